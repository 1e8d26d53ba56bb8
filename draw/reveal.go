// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/giftwheel/models"
)

var (
	ErrNotDrawn  = errors.New("draw: group has not been drawn yet")
	ErrNotMember = errors.New("draw: viewer has no assignment in this group")
)

// Reveal is one viewer's own pairing. It never carries anyone else's.
type Reveal struct {
	ReceiverID   string
	ReceiverName string
	ViewedAt     time.Time
	FirstView    bool
}

// Reveal returns the receiver assigned to viewerID in the given group and
// stamps the viewer's viewed_at timestamp on first call. Repeated calls are
// idempotent: same receiver, unchanged timestamp.
//
// The viewed_at stamp is a conditional update guarded by viewed_at IS NULL,
// so the null->timestamp transition happens at most once even under
// concurrent reveals from the same viewer.
func (o *Orchestrator) Reveal(ctx context.Context, groupID, viewerID string) (*Reveal, error) {
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
	if status != models.StatusDrawn {
		return nil, ErrNotDrawn
	}

	// A viewer who left the group, or joined after the draw, has no
	// standing here even if a stale token is presented.
	var current bool
	err = o.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM member
			WHERE id = $1 AND group_id = $2 AND left_at IS NULL
		)
	`, viewerID, groupID).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if !current {
		return nil, ErrNotMember
	}

	res, err := o.db.ExecContext(ctx, `
		UPDATE assignment
		SET viewed_at = $1
		WHERE group_id = $2 AND giver_id = $3 AND viewed_at IS NULL
	`, time.Now(), groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp view: %w", err)
	}
	stamped, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}

	var reveal Reveal
	err = o.db.QueryRowContext(ctx, `
		SELECT a.receiver_id, m.name, a.viewed_at
		FROM assignment a
		JOIN member m ON m.id = a.receiver_id
		WHERE a.group_id = $1 AND a.giver_id = $2
	`, groupID, viewerID).Scan(&reveal.ReceiverID, &reveal.ReceiverName, &reveal.ViewedAt)
	if err == sql.ErrNoRows {
		// Member joined after the draw: no assignment row keyed by them.
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}
	reveal.FirstView = stamped > 0

	if reveal.FirstView {
		slog.Info("assignment revealed", "group_id", groupID, "giver_id", viewerID)
	}

	return &reveal, nil
}
