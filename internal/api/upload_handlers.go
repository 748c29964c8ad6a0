package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/creatorstack/socialgate/internal/store"
)

// relayMultipart forwards a multipart upload to the backend path,
// preserving the file and the listed form fields. required fields are
// validated locally before any outbound call.
func (h *Handler) relayMultipart(c *gin.Context, backendPath string, required []string, optional []string) {
	fields := map[string]string{}
	for _, name := range required {
		v := c.PostForm(name)
		if v == "" {
			respondError(c, http.StatusBadRequest, name+" is required")
			return
		}
		fields[name] = v
	}
	for _, name := range optional {
		if v := c.PostForm(name); v != "" {
			fields[name] = v
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer file.Close()

	status, body, err := h.gw.PostMultipart(c.Request.Context(), backendPath,
		fields, "file", fileHeader.Filename, file)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	relay(c, status, body)
}

// UploadTikTokVideo relays a video upload to the backend.
func (h *Handler) UploadTikTokVideo(c *gin.Context) {
	h.relayMultipart(c, "/api/tiktok/upload-video",
		[]string{"user_id"}, []string{"title", "caption"})
}

// UploadInstagramReel relays a reel upload to the backend.
func (h *Handler) UploadInstagramReel(c *gin.Context) {
	h.relayMultipart(c, "/api/instagram/upload-reel",
		[]string{"user_id"}, []string{"caption"})
}

// UploadInstagramStory relays a story upload to the backend.
func (h *Handler) UploadInstagramStory(c *gin.Context) {
	h.relayMultipart(c, "/api/instagram/upload-story",
		[]string{"user_id"}, []string{"caption"})
}

var uploadKinds = map[string]bool{"reel": true, "story": true, "video": true}

type createUploadRequest struct {
	Provider string `json:"provider" binding:"required"`
	UserID   string `json:"user_id"`
	Kind     string `json:"kind" binding:"required"`
	MediaURL string `json:"media_url" binding:"required"`
	Caption  string `json:"caption"`
}

// CreateUpload queues an async upload job executed by the worker.
func (h *Handler) CreateUpload(c *gin.Context) {
	if h.queries == nil {
		respondError(c, http.StatusServiceUnavailable, "upload queue not configured")
		return
	}

	var body createUploadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !uploadKinds[body.Kind] {
		respondError(c, http.StatusBadRequest, "kind must be reel, story, or video")
		return
	}
	if body.UserID == "" {
		body.UserID = "default"
	}

	job, err := h.queries.CreateUploadJob(c.Request.Context(), store.CreateUploadJobParams{
		Provider:    body.Provider,
		UserID:      body.UserID,
		Kind:        body.Kind,
		MediaURL:    body.MediaURL,
		Caption:     body.Caption,
		MaxAttempts: 3,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to queue upload")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"job_id":  job.ID,
		"status":  "queued",
	})
}

// GetUpload returns an async upload job's status.
func (h *Handler) GetUpload(c *gin.Context) {
	if h.queries == nil {
		respondError(c, http.StatusServiceUnavailable, "upload queue not configured")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.queries.GetUploadJob(c.Request.Context(), store.GetUploadJobParams{ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "job not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to read job")
		return
	}

	resp := gin.H{
		"success":  true,
		"job_id":   job.ID,
		"provider": job.Provider,
		"kind":     job.Kind,
		"status":   job.Status,
		"attempt":  job.Attempt,
	}
	if job.Error.Valid {
		resp["error"] = job.Error.String
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = job.CompletedAt
	}
	c.JSON(http.StatusOK, resp)
}
