package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/gateway"
	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
)

type loginRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"user_id"`
}

// Login returns the handler for a provider's login route. It exchanges an
// authorization code for tokens and caches the resulting session.
func (h *Handler) Login(name provider.Name) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body loginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "code is required")
			return
		}
		uid := body.UserID
		if uid == "" {
			uid = "default"
		}

		switch name {
		case provider.TikTok:
			h.tiktokLogin(c, body.Code, uid)
		case provider.InstagramGraph:
			h.graphLogin(c, body.Code, uid)
		default:
			h.directLogin(c, name, body.Code, uid)
		}
	}
}

// directLogin drives the provider handshake locally: exchange, profile
// fetch, session write.
func (h *Handler) directLogin(c *gin.Context, name provider.Name, code, uid string) {
	sess, err := h.completeDirectLogin(c.Request.Context(), name, code, uid)
	if err != nil {
		if _, buildErr := h.buildProvider(name); buildErr != nil {
			respondError(c, http.StatusInternalServerError, buildErr.Error())
			return
		}
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"provider": sess.Provider,
		"user_id":  sess.UserID,
		"username": sess.Username,
		"account":  sess.AccountMeta,
	})
}

// tiktokLogin relays the exchange to the Backend Gateway. Gateway errors
// come back as {detail} bodies and are re-wrapped in the uniform envelope
// with the original status preserved.
func (h *Handler) tiktokLogin(c *gin.Context, code, uid string) {
	status, body, err := h.gw.PostJSON(c.Request.Context(), "/api/tiktok/login",
		gin.H{"code": code, "user_id": uid})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if status >= http.StatusBadRequest {
		detail := detailOrDefault(body, "tiktok login failed")
		c.JSON(status, gin.H{"success": false, "error": detail, "detail": detail})
		return
	}

	if sess, perr := parseGatewayLogin(provider.TikTok, uid, body); perr != nil {
		h.log.Warn("tiktok login: unusable profile payload", zap.Error(perr))
	} else if perr := h.sessions.Put(c.Request.Context(), *sess); perr != nil {
		h.log.Warn("tiktok login: session write failed", zap.Error(perr))
	}
	relay(c, status, body)
}

// graphLogin relays the Instagram Graph exchange verbatim.
func (h *Handler) graphLogin(c *gin.Context, code, uid string) {
	status, body, err := h.gw.PostJSON(c.Request.Context(), "/api/instagram/graph/login",
		gin.H{"code": code, "user_id": uid})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if status < http.StatusBadRequest {
		if sess, perr := parseGatewayLogin(provider.InstagramGraph, uid, body); perr != nil {
			h.log.Warn("instagram graph login: unusable profile payload", zap.Error(perr))
		} else if perr := h.sessions.Put(c.Request.Context(), *sess); perr != nil {
			h.log.Warn("instagram graph login: session write failed", zap.Error(perr))
		}
	}
	relay(c, status, body)
}

// completeDirectLogin runs the exchange → profile → session-write chain
// for a directly-integrated provider. Steps are strictly sequential and
// the chain stops at the first failure.
func (h *Handler) completeDirectLogin(ctx context.Context, name provider.Name, code, uid string) (*session.Session, error) {
	p, err := h.buildProvider(name)
	if err != nil {
		return nil, err
	}
	token, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	info, err := p.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	sess := session.Session{
		Provider:     name,
		UserID:       uid,
		Username:     info.Username,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		AccountMeta: session.AccountMeta{
			FollowersCount: info.FollowersCount,
			MediaCount:     info.MediaCount,
			AccountType:    info.AccountType,
		},
		ConnectedAt: time.Now(),
	}
	if !token.Expiry.IsZero() {
		sess.ExpiresAt = &token.Expiry
	}
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return &sess, nil
}

// completeGatewayLogin runs a gateway-relayed exchange for the callback
// flow, converting non-2xx responses into errors.
func (h *Handler) completeGatewayLogin(ctx context.Context, name provider.Name, code, uid string) (*session.Session, error) {
	path := "/api/tiktok/login"
	if name == provider.InstagramGraph {
		path = "/api/instagram/graph/login"
	}
	status, body, err := h.gw.PostJSON(ctx, path, gin.H{"code": code, "user_id": uid})
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s", detailOrDefault(body, fmt.Sprintf("%s login failed", name)))
	}
	sess, err := parseGatewayLogin(name, uid, body)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Put(ctx, *sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return sess, nil
}

// gatewayLoginPayload tolerates the two response shapes the backend uses:
// flat profile fields or the same fields nested under "data".
type gatewayLoginPayload struct {
	UserID         string `json:"user_id"`
	OpenID         string `json:"open_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	ExpiresIn      int64  `json:"expires_in"`
	FollowersCount int    `json:"followers_count"`
	FollowerCount  int    `json:"follower_count"`
	MediaCount     int    `json:"media_count"`
	AccountType    string `json:"account_type"`

	Data *gatewayLoginPayload `json:"data"`
}

func parseGatewayLogin(name provider.Name, uid string, body []byte) (*session.Session, error) {
	var p gatewayLoginPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if p.Data != nil {
		p = *p.Data
	}

	accountID := p.UserID
	if accountID == "" {
		accountID = p.OpenID
	}
	username := p.Username
	if username == "" {
		username = p.DisplayName
	}
	if accountID == "" && username == "" {
		return nil, fmt.Errorf("login response missing profile fields")
	}

	followers := p.FollowersCount
	if followers == 0 {
		followers = p.FollowerCount
	}

	sess := &session.Session{
		Provider:     name,
		UserID:       uid,
		Username:     username,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		AccountMeta: session.AccountMeta{
			FollowersCount: followers,
			MediaCount:     p.MediaCount,
			AccountType:    p.AccountType,
		},
		ConnectedAt: time.Now(),
	}
	if p.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(p.ExpiresIn) * time.Second)
		sess.ExpiresAt = &exp
	}
	return sess, nil
}

func detailOrDefault(body []byte, fallback string) string {
	if d := gateway.ErrorDetail(body); d != "" {
		return d
	}
	return fallback
}
