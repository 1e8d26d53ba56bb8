// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateGroupRequest: name, organizer_name
  - JoinGroupRequest: name
  - AddExclusionRequest: giver_id, blocked_id

# Response Types

Types for JSON responses:

  - CreateGroupResponse: group_id, admin_key, share_slug, share_url
  - JoinGroupResponse: member_id, member_token
  - DrawResponse: assignment_count, drawn_at (never individual pairings)
  - RevealResponse: receiver_id, receiver_name, viewed_at
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Group: group metadata and draw state
  - Member: participant with opaque token (token never serialized)
  - Exclusion: directional giver-may-not-give-to rule
  - GroupAdminView: group + members + exclusions for the organizer

# Constants

Status values:

	StatusOpen  = "open"
	StatusDrawn = "drawn"
*/
package models
