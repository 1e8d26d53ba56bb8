// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package santa implements the Secret Santa assignment algorithm.

The package is pure: no I/O, no persistence, no ambient randomness. Given a
member list, an ExclusionSet, and a random source, Generate produces a
derangement of the members (a bijection with no fixed points) that violates
no exclusion, or proves that none exists.

# Exclusions

ExclusionSet maps each giver to the set of receivers they may not be
assigned to. Rules are directional:

	excl := santa.NewExclusionSet()
	excl.Add("alice", "bob") // alice may not give to bob; bob may still give to alice

Duplicate pairs collapse, self-pairs are inert, and pairs naming unknown
members have no effect.

# Generation

	gen := santa.NewGenerator(rand.New(rand.NewSource(seed)))
	assignment, err := gen.Generate(members, excl)
	if errors.Is(err, santa.ErrInfeasible) {
		// no valid assignment exists; relax an exclusion and retry
	}

Generation is rejection sampling over uniformly shuffled permutations: cheap,
unbiased, and for the group sizes this application targets (single digits to
low tens) it converges in a handful of attempts unless the exclusion graph is
near-saturated. When the attempt budget runs out, a backtracking search over
receiver choices settles the question exactly, so ErrInfeasible is always a
genuine infeasibility proof and never a sampling artifact.
*/
package santa
