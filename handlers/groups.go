// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/giftwheel/auth"
	"github.com/danielhkuo/giftwheel/cliparse"
	"github.com/danielhkuo/giftwheel/middleware"
	"github.com/danielhkuo/giftwheel/models"
)

type GroupHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewGroupHandler(db *sql.DB, cfg cliparse.Config) *GroupHandler {
	return &GroupHandler{db: db, cfg: cfg}
}

// isUniqueViolation matches the duplicate-key error text of both drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.OrganizerName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "organizer_name is required")
		return
	}

	groupID := uuid.NewString()
	adminKey := auth.GenerateAdminKey(groupID, h.cfg.AdminKeySalt)
	shareSlug := auth.GenerateShareSlug(groupID, h.cfg.GroupSlugSalt)

	_, err := h.db.Exec(`
		INSERT INTO gift_group (id, name, organizer_name, status, share_slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, groupID, req.Name, req.OrganizerName, models.StatusOpen, shareSlug, time.Now())

	if err != nil {
		slog.Error("failed to insert group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create group")
		return
	}

	slog.Info("group created", "group_id", groupID, "organizer", req.OrganizerName)

	baseURL := "https://giftwheel.app" // TODO: Make this configurable
	shareURL := baseURL + "/groups/" + shareSlug

	middleware.JSONResponse(w, http.StatusCreated, models.CreateGroupResponse{
		GroupID:   groupID,
		AdminKey:  adminKey,
		ShareSlug: shareSlug,
		ShareURL:  shareURL,
	})
}

// GetGroup handles GET /groups/:slug
// Public view: group metadata and member names, never tokens or pairings
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var group models.Group
	err := h.db.QueryRow(`
		SELECT id, name, organizer_name, status, share_slug, drawn_at, created_at
		FROM gift_group
		WHERE share_slug = $1
	`, shareSlug).Scan(
		&group.ID, &group.Name, &group.OrganizerName, &group.Status,
		&group.ShareSlug, &group.DrawnAt, &group.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		slog.Error("failed to query group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	members, err := h.queryMembers(group.ID, false)
	if err != nil {
		slog.Error("failed to query members", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GroupWithMembers{
		Group:   group,
		Members: members,
	})
}

// JoinGroup handles POST /groups/:slug/join
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req models.JoinGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) < 2 || len(req.Name) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 2-50 characters")
		return
	}

	// Find group by share slug
	var groupID string
	var status string
	err := h.db.QueryRow(`
		SELECT id, status FROM gift_group WHERE share_slug = $1
	`, shareSlug).Scan(&groupID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		slog.Error("failed to query group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// No joining once names are drawn
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Group has already been drawn")
		return
	}

	memberToken, err := auth.GenerateMemberToken()
	if err != nil {
		slog.Error("failed to generate member token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join group")
		return
	}

	memberID := uuid.NewString()
	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.AdminKeySalt) // Reuse admin salt for IP hashing

	// UNIQUE (group_id, name) prevents duplicate names
	_, err = h.db.Exec(`
		INSERT INTO member (id, group_id, name, member_token, ip_hash, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, memberID, groupID, req.Name, memberToken, ipHash, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Name already taken")
			return
		}
		slog.Error("failed to insert member", "error", err, "group_id", groupID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join group")
		return
	}

	slog.Info("member joined", "group_id", groupID, "member_id", memberID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.JoinGroupResponse{
		MemberID:    memberID,
		MemberToken: memberToken,
	})
}

// GetGroupAdmin handles GET /groups/:id/admin
// Returns full group details including exclusions for the organizer
func (h *GroupHandler) GetGroupAdmin(w http.ResponseWriter, r *http.Request) {
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

	var group models.Group
	err := h.db.QueryRow(`
		SELECT id, name, organizer_name, status, share_slug, drawn_at, created_at
		FROM gift_group
		WHERE id = $1
	`, groupID).Scan(
		&group.ID, &group.Name, &group.OrganizerName, &group.Status,
		&group.ShareSlug, &group.DrawnAt, &group.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		slog.Error("failed to query group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	members, err := h.queryMembers(groupID, true)
	if err != nil {
		slog.Error("failed to query members", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	exclusions, err := h.queryExclusions(groupID)
	if err != nil {
		slog.Error("failed to query exclusions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GroupAdminView{
		Group:      group,
		Members:    members,
		Exclusions: exclusions,
	})
}

// AddExclusion handles POST /groups/:id/exclusions
func (h *GroupHandler) AddExclusion(w http.ResponseWriter, r *http.Request) {
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

	var req models.AddExclusionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.GiverID == "" || req.BlockedID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "giver_id and blocked_id are required")
		return
	}

	// Exclusions only make sense before the draw
	var status string
	err := h.db.QueryRow("SELECT status FROM gift_group WHERE id = $1", groupID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		slog.Error("failed to query group", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Group has already been drawn")
		return
	}

	// Both sides must be group members
	var memberCount int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM member
		WHERE group_id = $1 AND id IN ($2, $3)
	`, groupID, req.GiverID, req.BlockedID).Scan(&memberCount)
	if err != nil {
		slog.Error("failed to verify members", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	want := 2
	if req.GiverID == req.BlockedID {
		want = 1 // self-pair: inert but tolerated
	}
	if memberCount != want {
		middleware.ErrorResponse(w, http.StatusBadRequest, "giver_id and blocked_id must be group members")
		return
	}

	// Duplicate pairs collapse
	_, err = h.db.Exec(`
		INSERT INTO exclusion (group_id, giver_id, blocked_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, groupID, req.GiverID, req.BlockedID, time.Now())

	if err != nil {
		slog.Error("failed to insert exclusion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add exclusion")
		return
	}

	slog.Info("exclusion added", "group_id", groupID, "giver_id", req.GiverID, "blocked_id", req.BlockedID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddExclusionResponse{
		Message: "Exclusion recorded",
	})
}

// LeaveMember handles POST /groups/:id/members/:mid/leave
// Marks a member as having left; they stop counting toward draws
func (h *GroupHandler) LeaveMember(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	memberID := r.PathValue("mid")
	if groupID == "" || memberID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_id and member_id are required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(groupID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	res, err := h.db.Exec(`
		UPDATE member SET left_at = $1
		WHERE id = $2 AND group_id = $3 AND left_at IS NULL
	`, time.Now(), memberID, groupID)
	if err != nil {
		slog.Error("failed to mark member left", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if affected == 0 {
		// Already left, or never a member
		var exists bool
		err := h.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM member WHERE id = $1 AND group_id = $2)
		`, memberID, groupID).Scan(&exists)
		if err != nil {
			slog.Error("failed to verify member", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Member not found")
			return
		}
	}

	slog.Info("member left", "group_id", groupID, "member_id", memberID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) queryMembers(groupID string, includeLeft bool) ([]models.Member, error) {
	query := `
		SELECT id, group_id, name, joined_at, left_at
		FROM member
		WHERE group_id = $1
	`
	if !includeLeft {
		query += ` AND left_at IS NULL`
	}
	query += ` ORDER BY joined_at, id`

	rows, err := h.db.Query(query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &m.JoinedAt, &m.LeftAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (h *GroupHandler) queryExclusions(groupID string) ([]models.Exclusion, error) {
	rows, err := h.db.Query(`
		SELECT group_id, giver_id, blocked_id, created_at
		FROM exclusion
		WHERE group_id = $1
		ORDER BY created_at, giver_id, blocked_id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exclusions := []models.Exclusion{}
	for rows.Next() {
		var e models.Exclusion
		if err := rows.Scan(&e.GroupID, &e.GiverID, &e.BlockedID, &e.CreatedAt); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}
