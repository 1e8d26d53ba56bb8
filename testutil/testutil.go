// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/giftwheel/auth"
	"github.com/danielhkuo/giftwheel/cliparse"
	"github.com/danielhkuo/giftwheel/db"
	"github.com/danielhkuo/giftwheel/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Each call gets its own database, so tests never share state.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// cache=shared keeps the in-memory database alive across pool
	// connections; a single connection serializes concurrent writers.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file::memory:",
		DatabaseType:  "sqlite",
		AdminKeySalt:  "test-admin-salt",
		GroupSlugSalt: "test-slug-salt",
	}
}

// CreateTestGroup creates a group in the database and returns its ID, admin
// key, and share slug. status should be "open" or "drawn".
func CreateTestGroup(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string) (groupID, adminKey, shareSlug string) {
	t.Helper()

	groupID = uuid.NewString()
	adminKey = auth.GenerateAdminKey(groupID, cfg.AdminKeySalt)
	shareSlug = auth.GenerateShareSlug(groupID, cfg.GroupSlugSalt)

	var drawnAt *time.Time
	if status == models.StatusDrawn {
		now := time.Now()
		drawnAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO gift_group (id, name, organizer_name, status, share_slug, drawn_at, created_at)
		VALUES ($1, 'Test Group', 'TestOrganizer', $2, $3, $4, $5)
	`, groupID, status, shareSlug, drawnAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}

	return groupID, adminKey, shareSlug
}

// AddTestMember adds a member to a group and returns the member ID and token
func AddTestMember(t *testing.T, conn *sql.DB, groupID, name string) (memberID, memberToken string) {
	t.Helper()

	memberID = uuid.NewString()
	memberToken, err := auth.GenerateMemberToken()
	if err != nil {
		t.Fatalf("Failed to generate member token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO member (id, group_id, name, member_token, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, memberID, groupID, name, memberToken, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}

	return memberID, memberToken
}

// MarkMemberLeft sets a member's left_at timestamp
func MarkMemberLeft(t *testing.T, conn *sql.DB, memberID string) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE member SET left_at = $1 WHERE id = $2
	`, time.Now(), memberID)
	if err != nil {
		t.Fatalf("Failed to mark member as left: %v", err)
	}
}

// AddTestExclusion adds a directional exclusion pair to a group
func AddTestExclusion(t *testing.T, conn *sql.DB, groupID, giverID, blockedID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO exclusion (group_id, giver_id, blocked_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, groupID, giverID, blockedID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test exclusion: %v", err)
	}
}

// CountAssignments returns the number of assignment rows for a group
func CountAssignments(t *testing.T, conn *sql.DB, groupID string) int {
	t.Helper()

	var count int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM assignment WHERE group_id = $1
	`, groupID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count assignments: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
