// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import (
	"errors"
	"math/rand"
	"sort"
	"time"
)

// Assignment maps each giver to their assigned receiver. A valid assignment
// is a bijection on the member set with no fixed points that violates no
// exclusion.
type Assignment map[string]string

// ErrInfeasible means no valid assignment exists for the given members and
// exclusions. It is only returned after an exhaustive search, never because
// random sampling ran out of luck.
var ErrInfeasible = errors.New("santa: no valid assignment exists for these members and exclusions")

// DefaultMaxAttempts bounds the rejection-sampling phase. Sparse exclusion
// graphs converge in a handful of attempts; the budget is generous so dense
// graphs rarely reach the backtracking fallback.
const DefaultMaxAttempts = 1000

// Generator produces assignments. It is a pure function of (members,
// exclusions, Rand): the same seed yields the same assignment.
type Generator struct {
	// MaxAttempts is the rejection-sampling budget. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int
	// Rand is the random source. Nil means a fresh time-seeded source.
	Rand *rand.Rand
}

func NewGenerator(r *rand.Rand) *Generator {
	return &Generator{MaxAttempts: DefaultMaxAttempts, Rand: r}
}

// Generate returns one valid assignment for the member set, or ErrInfeasible
// if none exists.
//
// It first runs rejection sampling: shuffle the receiver list uniformly,
// discard the whole permutation on any fixed point or excluded pair, retry up
// to MaxAttempts. Successful samples are uniform over all valid assignments.
// If the budget is exhausted it falls back to a constructive backtracking
// search, so a returned error is a proof of infeasibility rather than bad
// sampling luck.
//
// Callers are expected to enforce their own minimum group size; Generate
// itself handles any member count.
func (g *Generator) Generate(members []string, excl *ExclusionSet) (Assignment, error) {
	r := g.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	n := len(members)
	receivers := make([]string, n)
	copy(receivers, members)

	for attempt := 0; attempt < attempts; attempt++ {
		r.Shuffle(n, func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})
		if validPermutation(members, receivers, excl) {
			a := make(Assignment, n)
			for i, giver := range members {
				a[giver] = receivers[i]
			}
			return a, nil
		}
	}

	return g.backtrack(members, excl, r)
}

// validPermutation checks receivers[i] against members[i] for fixed points
// and exclusions. Only the giver->receiver direction is consulted.
func validPermutation(members, receivers []string, excl *ExclusionSet) bool {
	for i, giver := range members {
		if giver == receivers[i] || excl.Forbids(giver, receivers[i]) {
			return false
		}
	}
	return true
}

// backtrack runs an exhaustive search over receiver choices, most-constrained
// giver first. Candidate order is shuffled so the fallback still returns
// varied assignments across draws, though not uniformly distributed ones.
func (g *Generator) backtrack(members []string, excl *ExclusionSet, r *rand.Rand) (Assignment, error) {
	n := len(members)

	candidates := make([][]string, n)
	for i, giver := range members {
		for _, recv := range members {
			if recv == giver || excl.Forbids(giver, recv) {
				continue
			}
			candidates[i] = append(candidates[i], recv)
		}
		c := candidates[i]
		r.Shuffle(len(c), func(a, b int) { c[a], c[b] = c[b], c[a] })
	}

	// Assign the giver with the fewest options first; prunes dense graphs
	// far sooner than member order would.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return len(candidates[order[a]]) < len(candidates[order[b]])
	})

	used := make(map[string]bool, n)
	chosen := make([]string, n)

	var assign func(k int) bool
	assign = func(k int) bool {
		if k == n {
			return true
		}
		i := order[k]
		for _, recv := range candidates[i] {
			if used[recv] {
				continue
			}
			used[recv] = true
			chosen[i] = recv
			if assign(k + 1) {
				return true
			}
			used[recv] = false
		}
		return false
	}

	if !assign(0) {
		return nil, ErrInfeasible
	}

	a := make(Assignment, n)
	for i, giver := range members {
		a[giver] = chosen[i]
	}
	return a, nil
}
