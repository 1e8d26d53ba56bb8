// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/giftwheel/cliparse"
	"github.com/danielhkuo/giftwheel/models"
	"github.com/danielhkuo/giftwheel/testutil"
)

// drawFixture creates an open group with n members and returns everything a
// draw test needs.
type drawFixture struct {
	groupID   string
	adminKey  string
	shareSlug string
	memberIDs []string
	tokens    map[string]string // member ID → token
}

func newDrawFixture(t *testing.T, conn *sql.DB, cfg cliparse.Config, names ...string) drawFixture {
	t.Helper()
	groupID, adminKey, shareSlug := testutil.CreateTestGroup(t, conn, cfg, models.StatusOpen)
	f := drawFixture{
		groupID:   groupID,
		adminKey:  adminKey,
		shareSlug: shareSlug,
		tokens:    make(map[string]string),
	}
	for _, name := range names {
		id, token := testutil.AddTestMember(t, conn, groupID, name)
		f.memberIDs = append(f.memberIDs, id)
		f.tokens[id] = token
	}
	return f
}

func performDrawReq(handler *DrawHandler, groupID, adminKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/groups/"+groupID+"/draw", nil)
	req.Header.Set("X-Admin-Key", adminKey)
	req.SetPathValue("id", groupID)
	w := httptest.NewRecorder()
	handler.PerformDraw(w, req)
	return w
}

func revealReq(handler *DrawHandler, shareSlug, memberToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/groups/"+shareSlug+"/my-assignment", nil)
	if memberToken != "" {
		req.Header.Set("X-Member-Token", memberToken)
	}
	req.SetPathValue("slug", shareSlug)
	w := httptest.NewRecorder()
	handler.Reveal(w, req)
	return w
}

func TestPerformDrawEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(conn, cfg)

	f := newDrawFixture(t, conn, cfg, "alice", "bob", "charlie", "diana")

	t.Run("successful draw", func(t *testing.T) {
		w := performDrawReq(handler, f.groupID, f.adminKey)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var resp models.DrawResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.AssignmentCount != 4 {
			t.Errorf("Expected 4 assignments, got %d", resp.AssignmentCount)
		}
		if resp.DrawnAt.IsZero() {
			t.Error("Expected non-zero drawn_at")
		}

		if got := testutil.CountAssignments(t, conn, f.groupID); got != 4 {
			t.Errorf("Expected 4 stored assignments, got %d", got)
		}
	})

	t.Run("second draw rejected", func(t *testing.T) {
		w := performDrawReq(handler, f.groupID, f.adminKey)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409 on repeat draw, got %d", w.Code)
		}
	})

	t.Run("invalid admin key", func(t *testing.T) {
		w := performDrawReq(handler, f.groupID, "wrong-key")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestPerformDrawEndpointTooFewMembers(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(conn, cfg)

	f := newDrawFixture(t, conn, cfg, "alice", "bob")

	w := performDrawReq(handler, f.groupID, f.adminKey)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Message == "Group has already been drawn" {
		t.Error("Too-few-members should be distinguishable from already-drawn")
	}

	// Group stays open so members can still be added
	var status string
	if err := conn.QueryRow("SELECT status FROM gift_group WHERE id = $1", f.groupID).Scan(&status); err != nil {
		t.Fatalf("Failed to query group: %v", err)
	}
	if status != models.StatusOpen {
		t.Errorf("Expected group to stay open, got '%s'", status)
	}
}

func TestPerformDrawEndpointInfeasible(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(conn, cfg)

	f := newDrawFixture(t, conn, cfg, "alice", "bob", "charlie")
	// alice can give to nobody
	testutil.AddTestExclusion(t, conn, f.groupID, f.memberIDs[0], f.memberIDs[1])
	testutil.AddTestExclusion(t, conn, f.groupID, f.memberIDs[0], f.memberIDs[2])

	w := performDrawReq(handler, f.groupID, f.adminKey)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d. Body: %s", w.Code, w.Body.String())
	}

	// No partial state: group open, zero assignments
	var status string
	if err := conn.QueryRow("SELECT status FROM gift_group WHERE id = $1", f.groupID).Scan(&status); err != nil {
		t.Fatalf("Failed to query group: %v", err)
	}
	if status != models.StatusOpen {
		t.Errorf("Expected group to stay open after infeasible draw, got '%s'", status)
	}
	if got := testutil.CountAssignments(t, conn, f.groupID); got != 0 {
		t.Errorf("Expected 0 assignments, got %d", got)
	}
}

func TestResetDrawEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(conn, cfg)

	f := newDrawFixture(t, conn, cfg, "alice", "bob", "charlie")

	if w := performDrawReq(handler, f.groupID, f.adminKey); w.Code != http.StatusOK {
		t.Fatalf("Draw failed: %d %s", w.Code, w.Body.String())
	}

	resetReq := func(id, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/groups/"+id+"/reset", nil)
		req.Header.Set("X-Admin-Key", key)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.ResetDraw(w, req)
		return w
	}

	t.Run("reset reopens group", func(t *testing.T) {
		w := resetReq(f.groupID, f.adminKey)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var status string
		if err := conn.QueryRow("SELECT status FROM gift_group WHERE id = $1", f.groupID).Scan(&status); err != nil {
			t.Fatalf("Failed to query group: %v", err)
		}
		if status != models.StatusOpen {
			t.Errorf("Expected status 'open', got '%s'", status)
		}
		if got := testutil.CountAssignments(t, conn, f.groupID); got != 0 {
			t.Errorf("Expected assignments cleared, got %d", got)
		}
	})

	t.Run("redraw after reset succeeds", func(t *testing.T) {
		w := performDrawReq(handler, f.groupID, f.adminKey)
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200 after reset, got %d. Body: %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid admin key", func(t *testing.T) {
		w := resetReq(f.groupID, "wrong-key")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestRevealEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(conn, cfg)

	f := newDrawFixture(t, conn, cfg, "alice", "bob", "charlie")
	aliceToken := f.tokens[f.memberIDs[0]]

	t.Run("before draw", func(t *testing.T) {
		w := revealReq(handler, f.shareSlug, aliceToken)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409 before draw, got %d", w.Code)
		}
	})

	if w := performDrawReq(handler, f.groupID, f.adminKey); w.Code != http.StatusOK {
		t.Fatalf("Draw failed: %d %s", w.Code, w.Body.String())
	}

	t.Run("each member sees only their own receiver", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, id := range f.memberIDs {
			w := revealReq(handler, f.shareSlug, f.tokens[id])
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
			}

			var resp models.RevealResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.ReceiverID == id {
				t.Error("Member must not be assigned to themselves")
			}
			if resp.ReceiverName == "" {
				t.Error("Expected receiver name")
			}
			if seen[resp.ReceiverID] {
				t.Errorf("Receiver %s assigned to more than one giver", resp.ReceiverID)
			}
			seen[resp.ReceiverID] = true
		}
	})

	t.Run("repeat reveal returns same pairing", func(t *testing.T) {
		first := revealReq(handler, f.shareSlug, aliceToken)
		second := revealReq(handler, f.shareSlug, aliceToken)
		if first.Code != http.StatusOK || second.Code != http.StatusOK {
			t.Fatalf("Expected both reveals to succeed: %d, %d", first.Code, second.Code)
		}

		var a, b models.RevealResponse
		if err := json.NewDecoder(first.Body).Decode(&a); err != nil {
			t.Fatalf("Failed to decode first response: %v", err)
		}
		if err := json.NewDecoder(second.Body).Decode(&b); err != nil {
			t.Fatalf("Failed to decode second response: %v", err)
		}
		if a.ReceiverID != b.ReceiverID {
			t.Error("Reveal must be stable across calls")
		}
		if a.ViewedAt.IsZero() || b.ViewedAt.IsZero() {
			t.Fatal("Expected viewed_at to be set")
		}
		if !a.ViewedAt.Equal(b.ViewedAt) {
			t.Error("viewed_at must not change on repeat reveals")
		}
	})

	t.Run("missing token", func(t *testing.T) {
		w := revealReq(handler, f.shareSlug, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		w := revealReq(handler, f.shareSlug, "not-a-real-token")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		w := revealReq(handler, "nope", aliceToken)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
