// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/giftwheel/cliparse"
	"github.com/danielhkuo/giftwheel/handlers"
	"github.com/danielhkuo/giftwheel/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	groupHandler := handlers.NewGroupHandler(db, cfg)
	drawHandler := handlers.NewDrawHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Group management (admin operations)
	mux.HandleFunc("POST /groups", middleware.WithLogging(groupHandler.CreateGroup))
	mux.HandleFunc("GET /groups/{id}/admin", middleware.WithLogging(groupHandler.GetGroupAdmin))
	mux.HandleFunc("POST /groups/{id}/exclusions", middleware.WithLogging(groupHandler.AddExclusion))
	mux.HandleFunc("POST /groups/{id}/members/{mid}/leave", middleware.WithLogging(groupHandler.LeaveMember))
	mux.HandleFunc("POST /groups/{id}/draw", middleware.WithLogging(drawHandler.PerformDraw))
	mux.HandleFunc("POST /groups/{id}/reset", middleware.WithLogging(drawHandler.ResetDraw))

	// Member operations (public, via share slug)
	mux.HandleFunc("GET /groups/{slug}", middleware.WithLogging(groupHandler.GetGroup))
	mux.HandleFunc("POST /groups/{slug}/join", middleware.WithLogging(groupHandler.JoinGroup))
	mux.HandleFunc("GET /groups/{slug}/my-assignment", middleware.WithLogging(drawHandler.Reveal))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("giftwheel API v1"))
	})

	return mux
}
