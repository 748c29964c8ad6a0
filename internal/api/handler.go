package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/config"
	"github.com/creatorstack/socialgate/internal/connect"
	"github.com/creatorstack/socialgate/internal/gateway"
	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
	"github.com/creatorstack/socialgate/internal/store"
)

// Handler carries the dependencies shared by all routes.
type Handler struct {
	cfg      *config.Config
	gw       *gateway.Client
	sessions session.Store
	tracker  *connect.Tracker
	// queries is nil when no database is configured; async upload routes
	// then report the queue as unavailable.
	queries store.Querier
	log     *zap.Logger
}

// userID resolves the caller's user scope. Single-user deployments omit it.
func userID(c *gin.Context) string {
	return c.DefaultQuery("user_id", "default")
}

// respondError writes the uniform failure envelope.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// relay forwards a backend response verbatim: same status, same body.
func relay(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json", body)
}

// buildProvider constructs the directly-integrated provider for name.
// Providers whose exchange runs through the Backend Gateway have no direct
// integration and return an error here.
func (h *Handler) buildProvider(name provider.Name) (provider.Provider, error) {
	p := h.cfg.Providers
	switch name {
	case provider.YouTube:
		if p.YouTube.ClientID == "" {
			return nil, errors.New("YouTube client ID not configured")
		}
		return provider.NewYouTubeProvider(
			p.YouTube.ClientID, p.YouTube.ClientSecret,
			h.cfg.CallbackURL(string(name))), nil
	case provider.InstagramPlatform:
		if p.InstagramPlatform.ClientID == "" {
			return nil, errors.New("Instagram client ID not configured")
		}
		return provider.NewInstagramPlatformProvider(
			p.InstagramPlatform.ClientID, p.InstagramPlatform.ClientSecret,
			h.cfg.CallbackURL(string(name))), nil
	case provider.InstagramMeta:
		if p.Meta.ClientID == "" {
			return nil, errors.New("Meta app ID not configured")
		}
		return provider.NewInstagramMetaProvider(
			p.Meta.ClientID, p.Meta.ClientSecret,
			h.cfg.CallbackURL(string(name))), nil
	default:
		return nil, fmt.Errorf("no direct integration for provider %s", name)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
