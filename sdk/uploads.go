package socialgate

import (
	"context"
	"fmt"
	"net/http"
)

// UploadsService queues async media uploads and reads their status.
type UploadsService struct {
	c *Client
}

// Create queues an upload job. The media must be reachable at
// req.MediaURL; the worker pushes it through the backing service.
func (s *UploadsService) Create(ctx context.Context, req CreateUploadRequest) (*CreateUploadResponse, error) {
	return doRequest[CreateUploadResponse](ctx, s.c, http.MethodPost,
		"/api/uploads", req, http.StatusAccepted)
}

// Get retrieves the current status of a queued upload.
func (s *UploadsService) Get(ctx context.Context, jobID string) (*UploadJob, error) {
	path := fmt.Sprintf("/api/uploads/%s", jobID)
	return doRequest[UploadJob](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}
