// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Giftwheel API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - GroupHandler: Group lifecycle, membership, and exclusion rules
  - DrawHandler: Drawing names, resetting, and per-member reveals

Handlers are created via constructor functions that accept *sql.DB and Config:

	groupHandler := handlers.NewGroupHandler(db, cfg)

# Group Lifecycle

Groups progress through two states: open → drawn

	POST /groups                  → CreateGroup (returns admin_key + share_slug)
	POST /groups/{id}/exclusions  → AddExclusion (open only)
	POST /groups/{id}/draw        → PerformDraw (one shot; 409 on repeat)
	POST /groups/{id}/reset       → ResetDraw (back to open)

Admin operations require the X-Admin-Key header.

# Member Flow

Members interact via the share slug:

	POST /groups/{slug}/join          → JoinGroup (returns member_token)
	GET  /groups/{slug}/my-assignment → Reveal (giver's own pairing only)

The reveal requires the X-Member-Token header; there is no way to address
someone else's assignment, so the pairing stays secret by construction.
*/
package handlers
