// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to the subset of SQL shared by PostgreSQL and SQLite so the
same schema runs against either driver.

# Tables

The schema includes:

  - gift_group: group metadata and the one-shot draw state flag
  - member: participants, their opaque tokens, and leave state
  - exclusion: directional may-not-give-to pairs
  - assignment: the persisted draw result plus per-giver viewed_at

# Relationships

	gift_group 1──* member
	gift_group 1──* exclusion
	gift_group 1──* assignment

All foreign keys use ON DELETE CASCADE.

# Constraints

Correctness-bearing constraints:

  - gift_group.status CHECK ('open', 'drawn'): the draw state machine
  - assignment PK (group_id, giver_id): each member gives exactly once
  - assignment UNIQUE (group_id, receiver_id): each member receives exactly once
  - member UNIQUE (group_id, name): join-name uniqueness
  - exclusion PK (group_id, giver_id, blocked_id): duplicate pairs collapse
*/
package db
