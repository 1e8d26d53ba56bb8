// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/giftwheel/auth"
	"github.com/danielhkuo/giftwheel/cliparse"
	"github.com/danielhkuo/giftwheel/draw"
	"github.com/danielhkuo/giftwheel/middleware"
	"github.com/danielhkuo/giftwheel/models"
)

type DrawHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	orch *draw.Orchestrator
}

func NewDrawHandler(db *sql.DB, cfg cliparse.Config) *DrawHandler {
	return &DrawHandler{db: db, cfg: cfg, orch: draw.NewOrchestrator(db)}
}

// PerformDraw handles POST /groups/:id/draw
// One shot: a second call returns 409 without touching the stored pairings
func (h *DrawHandler) PerformDraw(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if groupID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(groupID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	assignment, err := h.orch.PerformDraw(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, draw.ErrGroupNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		case errors.Is(err, draw.ErrAlreadyDrawn):
			middleware.ErrorResponse(w, http.StatusConflict, "Group has already been drawn")
		case errors.Is(err, draw.ErrTooFewMembers):
			middleware.ErrorResponse(w, http.StatusConflict, "Group needs at least three members who have not left")
		case errors.Is(err, draw.ErrInfeasible):
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Exclusions leave no valid way to draw names")
		default:
			slog.Error("draw failed", "error", err, "group_id", groupID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to perform draw")
		}
		return
	}

	var drawnAt time.Time
	if err := h.db.QueryRow("SELECT drawn_at FROM gift_group WHERE id = $1", groupID).Scan(&drawnAt); err != nil {
		slog.Error("failed to read drawn_at", "error", err, "group_id", groupID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DrawResponse{
		AssignmentCount: len(assignment),
		DrawnAt:         drawnAt,
	})
}

// ResetDraw handles POST /groups/:id/reset
// Discards all pairings and reopens the group
func (h *DrawHandler) ResetDraw(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if groupID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(groupID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if err := h.orch.ResetDraw(r.Context(), groupID); err != nil {
		if errors.Is(err, draw.ErrGroupNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
			return
		}
		slog.Error("reset failed", "error", err, "group_id", groupID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset draw")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResetDrawResponse{
		Message: "Draw reset; group is open again",
	})
}

// Reveal handles GET /groups/:slug/my-assignment
// The viewer is identified by the X-Member-Token header, never a URL parameter,
// so a pairing can only ever be fetched by its own giver
func (h *DrawHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	memberToken := r.Header.Get("X-Member-Token")
	if memberToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Member token required")
		return
	}

	var groupID string
	err := h.db.QueryRow("SELECT id FROM gift_group WHERE share_slug = $1", shareSlug).Scan(&groupID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		slog.Error("failed to query group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var viewerID string
	err = h.db.QueryRow(`
		SELECT id FROM member WHERE group_id = $1 AND member_token = $2
	`, groupID, memberToken).Scan(&viewerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid member token")
		return
	}
	if err != nil {
		slog.Error("failed to resolve member token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	reveal, err := h.orch.Reveal(r.Context(), groupID, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, draw.ErrGroupNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		case errors.Is(err, draw.ErrNotDrawn):
			middleware.ErrorResponse(w, http.StatusConflict, "Names have not been drawn yet")
		case errors.Is(err, draw.ErrNotMember):
			middleware.ErrorResponse(w, http.StatusForbidden, "No assignment for this member")
		default:
			slog.Error("reveal failed", "error", err, "group_id", groupID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch assignment")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RevealResponse{
		ReceiverID:   reveal.ReceiverID,
		ReceiverName: reveal.ReceiverName,
		ViewedAt:     reveal.ViewedAt,
	})
}
