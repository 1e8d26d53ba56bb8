// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Giftwheel API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Group management (admin, requires X-Admin-Key):

	POST /groups                          - Create group
	GET  /groups/{id}/admin               - Get group details and exclusions
	POST /groups/{id}/exclusions          - Add exclusion rule
	POST /groups/{id}/members/{mid}/leave - Mark member as left
	POST /groups/{id}/draw                - Draw names (one shot)
	POST /groups/{id}/reset               - Discard pairings, reopen group

Member operations (public, uses share slug):

	GET  /groups/{slug}               - Group info and member names
	POST /groups/{slug}/join          - Join group, returns member token
	GET  /groups/{slug}/my-assignment - Reveal own pairing (X-Member-Token)

# Handler Initialization

The router creates handler instances with dependency injection:

	groupHandler := handlers.NewGroupHandler(db, cfg)
	drawHandler := handlers.NewDrawHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
