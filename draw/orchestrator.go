// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/danielhkuo/giftwheel/models"
	"github.com/danielhkuo/giftwheel/santa"
)

// MinMembers is the smallest group the orchestrator will draw. Below three
// members a derangement under exclusions is degenerate or impossible, so the
// generator is never invoked for smaller groups.
const MinMembers = 3

// Domain outcomes. Handlers map these to user-facing states; anything else
// returned by the orchestrator is an infrastructure failure.
var (
	ErrGroupNotFound = errors.New("draw: group not found")
	ErrAlreadyDrawn  = errors.New("draw: group has already been drawn")
	ErrTooFewMembers = errors.New("draw: group needs at least three eligible members")
	ErrInfeasible    = errors.New("draw: exclusions leave no valid assignment")
)

// Orchestrator bridges the pure assignment generator to persistent storage
// and enforces the one-shot draw guarantee.
type Orchestrator struct {
	db *sql.DB

	// newRand supplies the generator's random source, one per draw.
	// Overridable in tests for reproducible draws.
	newRand func() *rand.Rand
}

func NewOrchestrator(db *sql.DB) *Orchestrator {
	return &Orchestrator{
		db: db,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// PerformDraw computes and persists the assignment for a group, exactly once.
//
// Eligible members (those who have not left) and the exclusion list are read
// as a snapshot, the generator runs outside any transaction, and the result
// is persisted together with the open->drawn transition in a single
// transaction. The transition is a conditional update on the status column,
// so concurrent calls serialize at the storage layer: exactly one wins and
// the rest observe ErrAlreadyDrawn. A failed generation leaves the group
// untouched, so the organizer can relax an exclusion and retry.
func (o *Orchestrator) PerformDraw(ctx context.Context, groupID string) (santa.Assignment, error) {
	var status string
	err := o.db.QueryRowContext(ctx, `
		SELECT status FROM gift_group WHERE id = $1
	`, groupID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}
	if status == models.StatusDrawn {
		return nil, ErrAlreadyDrawn
	}

	members, err := o.eligibleMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) < MinMembers {
		return nil, ErrTooFewMembers
	}

	excl, err := o.exclusionSet(ctx, groupID)
	if err != nil {
		return nil, err
	}

	gen := santa.NewGenerator(o.newRand())
	assignment, err := gen.Generate(members, excl)
	if err != nil {
		if errors.Is(err, santa.ErrInfeasible) {
			return nil, ErrInfeasible
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Compare-and-set on the status column is the one-shot guard. Claiming
	// the draw before inserting rows means a losing racer rolls back before
	// it can touch the assignment table.
	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE gift_group
		SET status = $1, drawn_at = $2
		WHERE id = $3 AND status = $4
	`, models.StatusDrawn, now, groupID, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to transition group: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if claimed == 0 {
		return nil, ErrAlreadyDrawn
	}

	for giver, receiver := range assignment {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assignment (group_id, giver_id, receiver_id, assigned_at)
			VALUES ($1, $2, $3, $4)
		`, groupID, giver, receiver, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit draw: %w", err)
	}

	slog.Info("draw complete", "group_id", groupID, "members", len(members), "exclusions", excl.Len())

	return assignment, nil
}

// ResetDraw is the administrative re-draw path: it deletes every assignment
// record and returns the group to open, in one transaction. It is never
// reachable from the generator or the normal draw flow.
func (o *Orchestrator) ResetDraw(ctx context.Context, groupID string) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE gift_group
		SET status = $1, drawn_at = NULL
		WHERE id = $2
	`, models.StatusOpen, groupID)
	if err != nil {
		return fmt.Errorf("failed to reset group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGroupNotFound
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM assignment WHERE group_id = $1
	`, groupID)
	if err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	slog.Info("draw reset", "group_id", groupID)

	return nil
}

// eligibleMembers returns the IDs of members who have not left the group,
// in a stable order.
func (o *Orchestrator) eligibleMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id FROM member
		WHERE group_id = $1 AND left_at IS NULL
		ORDER BY joined_at, id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

// exclusionSet loads the group's directional exclusions into the
// generator's lookup structure.
func (o *Orchestrator) exclusionSet(ctx context.Context, groupID string) (*santa.ExclusionSet, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT giver_id, blocked_id FROM exclusion WHERE group_id = $1
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exclusions: %w", err)
	}
	defer rows.Close()

	excl := santa.NewExclusionSet()
	for rows.Next() {
		var giver, blocked string
		if err := rows.Scan(&giver, &blocked); err != nil {
			return nil, fmt.Errorf("failed to scan exclusion: %w", err)
		}
		excl.Add(giver, blocked)
	}
	return excl, rows.Err()
}
