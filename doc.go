// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Giftwheel API server.

Giftwheel is a Secret Santa service: an organizer creates a group, members
join via a share link, the organizer sets up exclusion rules (couples,
last year's pairings), and a single draw assigns every member someone to
gift. Each member can only ever see their own assignment.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_KEY_SALT=... GROUP_SLUG_SALT=... go run main.go

Or with flags:

	go run main.go -p 3319 -d "giftwheel.db" --admin-salt ... --slug-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string or SQLite path
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - GROUP_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)

A .env file in the working directory is loaded at startup if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (groups, draws, reveals)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Key, token, and slug generation
  - santa: Exclusion graph and assignment generation
  - draw: Draw orchestration and per-member reveals
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
