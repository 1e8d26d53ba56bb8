// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package draw wraps the pure santa generator with persistence and the
one-shot draw guarantee.

# Orchestrator

An Orchestrator holds the database handle and exposes the three stateful
operations of the draw lifecycle:

	orch := draw.NewOrchestrator(db)
	assignment, err := orch.PerformDraw(ctx, groupID)
	reveal, err := orch.Reveal(ctx, groupID, viewerID)
	err = orch.ResetDraw(ctx, groupID)

# One-shot guarantee

PerformDraw transitions a group from open to drawn exactly once. The guard
is a storage-level conditional update (status = 'drawn' WHERE status =
'open') inside the same transaction that inserts the assignment rows, so a
reader can never observe a drawn group without its full assignment set, or
assignment rows on an open group. Concurrent draws for one group serialize
on that row; exactly one commits and the rest get ErrAlreadyDrawn. Draws
for different groups are independent.

# Outcomes

Domain outcomes are sentinel errors for errors.Is dispatch:

  - ErrGroupNotFound: no such group
  - ErrAlreadyDrawn: the draw already happened (a normal outcome, not an alarm)
  - ErrTooFewMembers: fewer than three eligible members
  - ErrInfeasible: exclusions admit no valid assignment; group left open for retry
  - ErrNotDrawn: reveal requested before the draw
  - ErrNotMember: the viewer has no assignment in the group

Any other error is an infrastructure failure. The orchestrator never retries
those itself: after an ambiguous write failure the safe recovery is to
re-check the group's status, which the next PerformDraw call does anyway.

# Reveal

Reveal returns only the row keyed by the viewer and stamps viewed_at on the
first call (UPDATE ... WHERE viewed_at IS NULL). Later calls return the same
receiver without touching the timestamp.
*/
package draw
