package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
)

// GetSession returns the cached connection for a provider. Absence is not
// an error condition worth an envelope distinction beyond 404: the UI
// renders "disconnected" either way.
func (h *Handler) GetSession(c *gin.Context) {
	name, err := provider.ParseName(c.Param("provider"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), name, userID(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not connected")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to read session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

// Disconnect clears a provider connection. Repeating a disconnect is a
// no-op. TikTok sessions are also invalidated on the backend first; a
// backend failure still clears locally so the user is never stuck
// half-connected.
func (h *Handler) Disconnect(c *gin.Context) {
	name, err := provider.ParseName(c.Param("provider"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	uid := userID(c)

	if name == provider.TikTok {
		status, body, err := h.gw.PostJSON(c.Request.Context(), "/api/tiktok/logout",
			gin.H{"user_id": uid})
		if err != nil {
			h.log.Warn("tiktok backend logout unreachable", zap.Error(err))
		} else if status >= http.StatusBadRequest {
			h.log.Warn("tiktok backend logout rejected",
				zap.Int("status", status),
				zap.String("detail", detailOrDefault(body, "")))
		}
	}

	if err := h.sessions.Clear(c.Request.Context(), name, uid); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "disconnected"})
}

// TikTokLogout is the original logout route shape: backend logout relay
// plus local clear.
func (h *Handler) TikTokLogout(c *gin.Context) {
	var body struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "user_id is required")
		return
	}

	status, respBody, err := h.gw.PostJSON(c.Request.Context(), "/api/tiktok/logout",
		gin.H{"user_id": body.UserID})
	if err != nil {
		// Backend unreachable: still clear locally, report the failure.
		if cerr := h.sessions.Clear(c.Request.Context(), provider.TikTok, body.UserID); cerr != nil {
			h.log.Warn("local session clear failed", zap.Error(cerr))
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if cerr := h.sessions.Clear(c.Request.Context(), provider.TikTok, body.UserID); cerr != nil {
		h.log.Warn("local session clear failed", zap.Error(cerr))
	}
	relay(c, status, respBody)
}

// RefreshSession refreshes the stored token for a directly-integrated
// provider and rewrites the session.
func (h *Handler) RefreshSession(c *gin.Context) {
	name, err := provider.ParseName(c.Param("provider"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	uid := userID(c)

	sess, err := h.sessions.Get(c.Request.Context(), name, uid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not connected")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to read session")
		return
	}

	p, err := h.buildProvider(name)
	if err != nil {
		respondError(c, http.StatusBadRequest, "refresh not supported for "+string(name))
		return
	}

	// Instagram variants refresh the access token itself; the others use
	// the refresh token.
	grant := sess.RefreshToken
	if grant == "" {
		grant = sess.AccessToken
	}
	token, err := p.Refresh(c.Request.Context(), grant)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	sess.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		sess.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		sess.ExpiresAt = &token.Expiry
	}
	if err := h.sessions.Put(c.Request.Context(), *sess); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to store session")
		return
	}

	resp := gin.H{"success": true, "provider": name, "user_id": uid}
	if sess.ExpiresAt != nil {
		resp["expires_at"] = sess.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}
