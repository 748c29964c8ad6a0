package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/creatorstack/socialgate/internal/provider"
)

// StartConnect allocates a connection attempt and returns the URL the
// user's browser should open in the OAuth popup.
func (h *Handler) StartConnect(c *gin.Context) {
	name, err := provider.ParseName(c.Param("provider"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	h.startConnect(c, name)
}

// AuthURL returns a handler serving the provider-specific auth-url route.
func (h *Handler) AuthURL(name provider.Name) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.startConnect(c, name)
	}
}

func (h *Handler) startConnect(c *gin.Context, name provider.Name) {
	switch name {
	case provider.TikTok, provider.InstagramGraph:
		h.startGatewayConnect(c, name)
	default:
		h.startDirectConnect(c, name)
	}
}

// startDirectConnect builds the auth URL locally. A misconfigured provider
// fails before any attempt is allocated, mirroring a popup that never
// opened.
func (h *Handler) startDirectConnect(c *gin.Context, name provider.Name) {
	p, err := h.buildProvider(name)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	uid := userID(c)
	attempt := h.tracker.Begin(name, uid)
	state, err := provider.EncodeState(name, attempt.ID, uid)
	if err != nil {
		h.tracker.Fail(attempt.ID, "failed to generate state")
		respondError(c, http.StatusInternalServerError, "failed to generate state")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"auth_url":   p.AuthURL(state),
		"attempt_id": attempt.ID,
	})
}

// startGatewayConnect fetches the auth URL from the Backend Gateway and
// swaps in this service's state parameter so the callback can be tied back
// to the attempt.
func (h *Handler) startGatewayConnect(c *gin.Context, name provider.Name) {
	status, body, err := h.gw.GetJSON(c.Request.Context(), gatewayAuthURLPath(name))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if status >= http.StatusBadRequest {
		relay(c, status, body)
		return
	}

	var parsed struct {
		AuthURL string `json:"auth_url"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || (parsed.AuthURL == "" && parsed.URL == "") {
		respondError(c, http.StatusInternalServerError, "backend returned no auth URL")
		return
	}
	rawURL := parsed.AuthURL
	if rawURL == "" {
		rawURL = parsed.URL
	}

	uid := userID(c)
	attempt := h.tracker.Begin(name, uid)
	state, err := provider.EncodeState(name, attempt.ID, uid)
	if err != nil {
		h.tracker.Fail(attempt.ID, "failed to generate state")
		respondError(c, http.StatusInternalServerError, "failed to generate state")
		return
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		h.tracker.Fail(attempt.ID, "backend returned invalid auth URL")
		respondError(c, http.StatusInternalServerError, "backend returned invalid auth URL")
		return
	}
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"auth_url":   u.String(),
		"attempt_id": attempt.ID,
	})
}

func gatewayAuthURLPath(name provider.Name) string {
	if name == provider.InstagramGraph {
		return "/api/instagram/graph/auth-url"
	}
	return "/api/tiktok/auth-url"
}

// AttemptStatus is the polling fallback for openers that missed the
// popup's completion message.
func (h *Handler) AttemptStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid attempt id")
		return
	}
	attempt, ok := h.tracker.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "unknown attempt")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "attempt": attempt})
}
