package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
	"github.com/creatorstack/socialgate/internal/store"
)

// uploadPath maps a job kind to the backend upload route.
func uploadPath(kind string) (string, error) {
	switch kind {
	case "reel":
		return "/api/instagram/upload-reel", nil
	case "story":
		return "/api/instagram/upload-story", nil
	case "video":
		return "/api/tiktok/upload-video", nil
	default:
		return "", fmt.Errorf("unknown upload kind: %s", kind)
	}
}

// ExecuteUpload performs one queued upload through the Backend Gateway.
// It implements worker.UploadExecutor. The job's session must still exist;
// a disconnected account fails the job rather than retrying forever.
func (h *Handler) ExecuteUpload(ctx context.Context, job store.UploadJob) error {
	path, err := uploadPath(job.Kind)
	if err != nil {
		return err
	}

	name, err := provider.ParseName(job.Provider)
	if err != nil {
		return err
	}
	sess, err := h.sessions.Get(ctx, name, job.UserID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return fmt.Errorf("account not connected: %s", job.Provider)
		}
		return fmt.Errorf("reading session: %w", err)
	}

	status, body, err := h.gw.PostJSON(ctx, path, gin.H{
		"user_id":      job.UserID,
		"media_url":    job.MediaURL,
		"caption":      job.Caption,
		"access_token": sess.AccessToken,
	})
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("upload failed (%d): %s", status,
			detailOrDefault(body, http.StatusText(status)))
	}
	return nil
}
