// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

// ExclusionSet records which receivers each giver may not be assigned to.
// Exclusions are directional: Add(a, b) does not forbid b giving to a; both
// directions must be added explicitly if a pair is mutually excluded.
type ExclusionSet struct {
	blocked map[string]map[string]bool
}

func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{blocked: make(map[string]map[string]bool)}
}

// Add records that giver may not give to receiver. Duplicate pairs collapse.
// Self-pairs and pairs referencing unknown members are accepted; a self-pair
// is inert because self-assignment is forbidden unconditionally, and an
// unknown member never appears in a candidate pair.
func (s *ExclusionSet) Add(giver, receiver string) {
	set := s.blocked[giver]
	if set == nil {
		set = make(map[string]bool)
		s.blocked[giver] = set
	}
	set[receiver] = true
}

// Forbids reports whether giver may not give to receiver.
func (s *ExclusionSet) Forbids(giver, receiver string) bool {
	return s.blocked[giver][receiver]
}

// Len returns the number of distinct exclusion pairs.
func (s *ExclusionSet) Len() int {
	n := 0
	for _, set := range s.blocked {
		n += len(set)
	}
	return n
}
