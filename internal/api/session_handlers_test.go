package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
)

func seedSession(t *testing.T, h *Handler, name provider.Name, uid string) {
	t.Helper()
	err := h.sessions.Put(context.Background(), session.Session{
		Provider:    name,
		UserID:      uid,
		Username:    "creator",
		AccessToken: "at",
		ConnectedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetSession_NotConnected_Returns404(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)

	c, w := ginCtx("GET", "/api/session/tiktok", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.GetSession(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "not connected" {
		t.Errorf("expected 'not connected', got %v", resp["error"])
	}
}

func TestGetSession_Connected_Returns200(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "default")

	c, w := ginCtx("GET", "/api/session/tiktok", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.GetSession(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	sess := resp["session"].(map[string]any)
	if sess["username"] != "creator" {
		t.Errorf("expected username=creator, got %v", sess["username"])
	}
}

func TestGetSession_UserScoped(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "other-user")

	c, w := ginCtx("GET", "/api/session/tiktok?user_id=me", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.GetSession(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("another user's session must not leak, got %d", w.Code)
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.YouTube, "default")

	for i := 0; i < 2; i++ {
		c, w := ginCtx("DELETE", "/api/session/youtube", nil,
			gin.Params{{Key: "provider", Value: "youtube"}})
		h.Disconnect(c)
		if w.Code != http.StatusOK {
			t.Errorf("disconnect %d: expected 200, got %d", i+1, w.Code)
		}
		resp := decodeBody(t, w)
		if resp["status"] != "disconnected" {
			t.Errorf("disconnect %d: expected disconnected, got %v", i+1, resp["status"])
		}
	}
	if _, err := h.sessions.Get(context.Background(), provider.YouTube, "default"); err != session.ErrNotFound {
		t.Errorf("expected session gone, got %v", err)
	}
}

func TestDisconnect_TikTok_NotifiesBackend(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "u1")

	c, w := ginCtx("DELETE", "/api/session/tiktok?user_id=u1", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.Disconnect(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if fb.calls("/api/tiktok/logout") != 1 {
		t.Error("tiktok disconnect must notify the backend")
	}
	sent := fb.lastBody(t, "/api/tiktok/logout")
	if sent["user_id"] != "u1" {
		t.Errorf("expected user_id forwarded, got %v", sent)
	}
}

func TestDisconnect_TikTok_BackendDown_StillClearsLocally(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "default")
	fb.Close()

	c, w := ginCtx("DELETE", "/api/session/tiktok", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.Disconnect(c)

	if w.Code != http.StatusOK {
		t.Errorf("backend failure must not block disconnect, got %d", w.Code)
	}
	if _, err := h.sessions.Get(context.Background(), provider.TikTok, "default"); err != session.ErrNotFound {
		t.Errorf("expected local session cleared, got %v", err)
	}
}

func TestTikTokLogout_MissingUserID_Returns400(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)

	body, _ := json.Marshal(map[string]string{})
	c, w := ginCtx("POST", "/api/tiktok/logout", body, nil)
	h.TikTokLogout(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if fb.calls("/api/tiktok/logout") != 0 {
		t.Error("validation failures must not reach the backend")
	}
}

func TestTikTokLogout_BackendDown_ClearsLocallyAndReturns500(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "u1")
	fb.Close()

	body, _ := json.Marshal(map[string]string{"user_id": "u1"})
	c, w := ginCtx("POST", "/api/tiktok/logout", body, nil)
	h.TikTokLogout(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if _, err := h.sessions.Get(context.Background(), provider.TikTok, "u1"); err != session.ErrNotFound {
		t.Errorf("expected local session cleared despite backend failure, got %v", err)
	}
}

func TestTikTokLogout_RelaysBackendResponse(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST", "/api/tiktok/logout", http.StatusOK, `{"success":true,"message":"logged out"}`)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "u1")

	body, _ := json.Marshal(map[string]string{"user_id": "u1"})
	c, w := ginCtx("POST", "/api/tiktok/logout", body, nil)
	h.TikTokLogout(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != `{"success":true,"message":"logged out"}` {
		t.Errorf("expected verbatim relay, got %s", w.Body.String())
	}
	if _, err := h.sessions.Get(context.Background(), provider.TikTok, "u1"); err != session.ErrNotFound {
		t.Errorf("expected local session cleared, got %v", err)
	}
}

func TestRefreshSession_GatewayProvider_Returns400(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)
	seedSession(t, h, provider.TikTok, "default")

	c, w := ginCtx("POST", "/api/session/tiktok/refresh", nil,
		gin.Params{{Key: "provider", Value: "tiktok"}})
	h.RefreshSession(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "refresh not supported for tiktok" {
		t.Errorf("unexpected error: %v", resp["error"])
	}
}

func TestRefreshSession_NotConnected_Returns404(t *testing.T) {
	fb := newFakeBackend(t)
	h := newTestHandler(t, fb.URL)

	c, w := ginCtx("POST", "/api/session/youtube/refresh", nil,
		gin.Params{{Key: "provider", Value: "youtube"}})
	h.RefreshSession(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
