// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL is restricted to the subset shared by PostgreSQL and SQLite:
// no NOW() defaults (timestamps are set by application code) and $N
// placeholders everywhere.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Groups
CREATE TABLE IF NOT EXISTS gift_group (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    organizer_name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'drawn')),
    share_slug TEXT UNIQUE,
    drawn_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gift_group_share_slug ON gift_group(share_slug);
CREATE INDEX IF NOT EXISTS idx_gift_group_status ON gift_group(status);

-- Members
CREATE TABLE IF NOT EXISTS member (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES gift_group(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    member_token TEXT NOT NULL UNIQUE,
    ip_hash TEXT,
    joined_at TIMESTAMP NOT NULL,
    left_at TIMESTAMP,
    UNIQUE (group_id, name)
);

CREATE INDEX IF NOT EXISTS idx_member_group_id ON member(group_id);
CREATE INDEX IF NOT EXISTS idx_member_token ON member(member_token);

-- Exclusions (directional: giver may not give to blocked)
CREATE TABLE IF NOT EXISTS exclusion (
    group_id TEXT NOT NULL REFERENCES gift_group(id) ON DELETE CASCADE,
    giver_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
    blocked_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (group_id, giver_id, blocked_id)
);

CREATE INDEX IF NOT EXISTS idx_exclusion_group_id ON exclusion(group_id);

-- Assignments (one row per giver; the UNIQUE receiver constraint makes
-- the persisted mapping a bijection at the storage layer)
CREATE TABLE IF NOT EXISTS assignment (
    group_id TEXT NOT NULL REFERENCES gift_group(id) ON DELETE CASCADE,
    giver_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
    receiver_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
    assigned_at TIMESTAMP NOT NULL,
    viewed_at TIMESTAMP,
    PRIMARY KEY (group_id, giver_id),
    UNIQUE (group_id, receiver_id)
);

CREATE INDEX IF NOT EXISTS idx_assignment_group_id ON assignment(group_id);
`
