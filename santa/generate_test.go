// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

// assertValidAssignment checks the three invariants every successful
// generation must satisfy: bijection on the member set, no fixed points,
// no violated exclusions.
func assertValidAssignment(t *testing.T, a Assignment, members []string, excl *ExclusionSet) {
	t.Helper()

	if len(a) != len(members) {
		t.Fatalf("assignment has %d pairs, want %d", len(a), len(members))
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	seen := make(map[string]bool, len(members))
	for giver, receiver := range a {
		if !memberSet[giver] {
			t.Errorf("giver %q is not a member", giver)
		}
		if !memberSet[receiver] {
			t.Errorf("receiver %q is not a member", receiver)
		}
		if giver == receiver {
			t.Errorf("fixed point: %q assigned to themselves", giver)
		}
		if excl.Forbids(giver, receiver) {
			t.Errorf("violated exclusion: %q -> %q", giver, receiver)
		}
		if seen[receiver] {
			t.Errorf("receiver %q assigned to multiple givers", receiver)
		}
		seen[receiver] = true
	}
}

func TestGenerateThreeMembersNoExclusions(t *testing.T) {
	members := []string{"alice", "bob", "charlie"}
	excl := NewExclusionSet()

	gen := NewGenerator(rand.New(rand.NewSource(1)))
	a, err := gen.Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	assertValidAssignment(t, a, members, excl)

	// Only two derangements of three elements exist: the two rotations.
	rotLeft := Assignment{"alice": "bob", "bob": "charlie", "charlie": "alice"}
	rotRight := Assignment{"alice": "charlie", "charlie": "bob", "bob": "alice"}

	matches := func(want Assignment) bool {
		for g, r := range want {
			if a[g] != r {
				return false
			}
		}
		return true
	}
	if !matches(rotLeft) && !matches(rotRight) {
		t.Errorf("assignment %v is not one of the two valid rotations", a)
	}
}

func TestGenerateForcedChoice(t *testing.T) {
	// With alice->bob excluded, only one derangement of three remains,
	// so every member's target is forced.
	members := []string{"alice", "bob", "charlie"}
	excl := NewExclusionSet()
	excl.Add("alice", "bob")

	for seed := int64(0); seed < 20; seed++ {
		gen := NewGenerator(rand.New(rand.NewSource(seed)))
		a, err := gen.Generate(members, excl)
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", seed, err)
		}
		assertValidAssignment(t, a, members, excl)

		if a["alice"] != "charlie" {
			t.Errorf("seed %d: alice -> %q, want charlie (only remaining option)", seed, a["alice"])
		}
		if a["charlie"] != "bob" || a["bob"] != "alice" {
			t.Errorf("seed %d: assignment %v does not follow from the bijection constraint", seed, a)
		}
	}
}

func TestGenerateMutuallyExcludedPair(t *testing.T) {
	// Two members who mutually exclude each other: every permutation
	// either fixes both or pairs them, so no assignment exists.
	members := []string{"alice", "bob"}
	excl := NewExclusionSet()
	excl.Add("alice", "bob")
	excl.Add("bob", "alice")

	gen := NewGenerator(rand.New(rand.NewSource(7)))
	a, err := gen.Generate(members, excl)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("Generate() error = %v, want ErrInfeasible", err)
	}
	if a != nil {
		t.Errorf("Generate() returned assignment %v alongside failure", a)
	}
}

func TestGenerateTwoMembersNoExclusions(t *testing.T) {
	members := []string{"alice", "bob"}
	excl := NewExclusionSet()

	gen := NewGenerator(rand.New(rand.NewSource(3)))
	a, err := gen.Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a["alice"] != "bob" || a["bob"] != "alice" {
		t.Errorf("assignment %v, want the swap", a)
	}
}

func TestGenerateCouples(t *testing.T) {
	// Two couples, each excluded in both directions. Every draw must
	// respect all four constraints.
	members := []string{"alice", "bob", "charlie", "diana"}
	excl := NewExclusionSet()
	excl.Add("alice", "bob")
	excl.Add("bob", "alice")
	excl.Add("charlie", "diana")
	excl.Add("diana", "charlie")

	for seed := int64(0); seed < 20; seed++ {
		gen := NewGenerator(rand.New(rand.NewSource(seed)))
		a, err := gen.Generate(members, excl)
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", seed, err)
		}
		assertValidAssignment(t, a, members, excl)
	}
}

func TestGenerateDirectionalSolvability(t *testing.T) {
	// alice is excluded from everyone but diana, and diana is excluded
	// from giving back to alice. Solvable because only the giver->receiver
	// direction of a pair is ever checked.
	members := []string{"alice", "bob", "charlie", "diana"}
	excl := NewExclusionSet()
	excl.Add("alice", "bob")
	excl.Add("alice", "charlie")
	excl.Add("diana", "alice")

	gen := NewGenerator(rand.New(rand.NewSource(11)))
	a, err := gen.Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	assertValidAssignment(t, a, members, excl)

	if a["alice"] != "diana" {
		t.Errorf("alice -> %q, want diana (only permitted receiver)", a["alice"])
	}
}

func TestGenerateSelfExclusionInert(t *testing.T) {
	members := []string{"alice", "bob", "charlie"}
	excl := NewExclusionSet()
	excl.Add("alice", "alice")
	excl.Add("bob", "bob")

	gen := NewGenerator(rand.New(rand.NewSource(5)))
	a, err := gen.Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v (self-exclusions must be inert)", err)
	}
	assertValidAssignment(t, a, members, excl)
}

func TestGenerateBacktrackingFallback(t *testing.T) {
	// Six members where each has exactly one permitted receiver (a single
	// six-cycle). One random shuffle in 6! hits it, so a budget of 1
	// forces the backtracking search, which must find the unique cycle.
	n := 6
	members := make([]string, n)
	for i := range members {
		members[i] = fmt.Sprintf("m%d", i)
	}
	excl := NewExclusionSet()
	for i, giver := range members {
		next := members[(i+1)%n]
		for _, recv := range members {
			if recv != giver && recv != next {
				excl.Add(giver, recv)
			}
		}
	}

	gen := &Generator{MaxAttempts: 1, Rand: rand.New(rand.NewSource(2))}
	a, err := gen.Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v, want fallback success", err)
	}
	assertValidAssignment(t, a, members, excl)

	for i, giver := range members {
		want := members[(i+1)%n]
		if a[giver] != want {
			t.Errorf("%s -> %s, want %s", giver, a[giver], want)
		}
	}
}

func TestGenerateSingleMemberInfeasible(t *testing.T) {
	gen := &Generator{MaxAttempts: 10, Rand: rand.New(rand.NewSource(4))}
	_, err := gen.Generate([]string{"alice"}, NewExclusionSet())
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("Generate() error = %v, want ErrInfeasible", err)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e"}
	excl := NewExclusionSet()
	excl.Add("a", "b")

	first, err := NewGenerator(rand.New(rand.NewSource(42))).Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := NewGenerator(rand.New(rand.NewSource(42))).Generate(members, excl)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for g, r := range first {
		if second[g] != r {
			t.Errorf("same seed diverged: %s -> %s vs %s", g, r, second[g])
		}
	}
}

// TestGenerateProperties runs the generator across many seeds, group sizes,
// and random exclusion densities and checks the invariants on every success.
func TestGenerateProperties(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))

		n := 3 + r.Intn(10)
		members := make([]string, n)
		for i := range members {
			members[i] = fmt.Sprintf("member%02d", i)
		}

		excl := NewExclusionSet()
		pairs := r.Intn(n) // sparse: fewer exclusions than members
		for p := 0; p < pairs; p++ {
			excl.Add(members[r.Intn(n)], members[r.Intn(n)])
		}

		gen := NewGenerator(r)
		a, err := gen.Generate(members, excl)
		if err != nil {
			// The fallback proved infeasibility; nothing to validate.
			if !errors.Is(err, ErrInfeasible) {
				t.Fatalf("seed %d: unexpected error %v", seed, err)
			}
			continue
		}
		assertValidAssignment(t, a, members, excl)
	}
}
