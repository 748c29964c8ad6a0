package api

import (
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

// RegisterRoutes wires all HTTP routes and returns the Handler so the
// caller can hand it to the upload worker. queries may be nil when no
// database is configured.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, gw *gateway.Client,
	sessions session.Store, tracker *connect.Tracker, queries store.Querier,
	log *zap.Logger) *Handler {

	h := &Handler{
		cfg:      cfg,
		gw:       gw,
		sessions: sessions,
		tracker:  tracker,
		queries:  queries,
		log:      log,
	}

	r.GET("/health", h.Health)

	// Callback is called by the provider after user authorization.
	r.GET("/oauth/:provider/callback", h.Callback)

	api := r.Group("/api")
	{
		// Auth URL issuance: direct providers build locally, proxied
		// providers relay the backend's URL verbatim.
		api.GET("/youtube/auth-url", h.AuthURL(provider.YouTube))
		api.GET("/instagram/platform/auth-url", h.AuthURL(provider.InstagramPlatform))
		api.GET("/instagram/meta/auth-url", h.AuthURL(provider.InstagramMeta))
		api.GET("/instagram/graph/auth-url", h.RelayAuthURL("/api/instagram/graph/auth-url"))
		api.GET("/tiktok/auth-url", h.RelayAuthURL("/api/tiktok/auth-url"))

		// Code exchange.
		api.POST("/youtube/login", h.Login(provider.YouTube))
		api.POST("/instagram/platform/login", h.Login(provider.InstagramPlatform))
		api.POST("/instagram/meta/login", h.Login(provider.InstagramMeta))
		api.POST("/instagram/graph/login", h.Login(provider.InstagramGraph))
		api.POST("/tiktok/login", h.Login(provider.TikTok))

		// Connection attempts: start + poll fallback.
		api.GET("/connect/:provider/start", h.StartConnect)
		api.GET("/attempts/:id", h.AttemptStatus)

		// Sessions.
		api.GET("/session/:provider", h.GetSession)
		api.DELETE("/session/:provider", h.Disconnect)
		api.POST("/session/:provider/refresh", h.RefreshSession)
		api.POST("/tiktok/logout", h.TikTokLogout)

		// Media uploads: synchronous multipart relays plus the async queue.
		api.POST("/tiktok/upload-video", h.UploadTikTokVideo)
		api.POST("/instagram/upload-reel", h.UploadInstagramReel)
		api.POST("/instagram/upload-story", h.UploadInstagramStory)
		api.POST("/uploads", h.CreateUpload)
		api.GET("/uploads/:id", h.GetUpload)
	}

	return h
}

// RelayAuthURL forwards an auth-url request to the backend and relays the
// response unchanged.
func (h *Handler) RelayAuthURL(backendPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, body, err := h.gw.GetJSON(c.Request.Context(), backendPath)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		relay(c, status, body)
	}
}
