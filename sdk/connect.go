package socialgate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ConnectService drives OAuth connection attempts.
type ConnectService struct {
	c *Client
}

// Start opens a connection attempt and returns the URL the user's browser
// should be sent to. userID may be empty for single-user deployments.
func (s *ConnectService) Start(ctx context.Context, provider, userID string) (*StartConnectResponse, error) {
	path := fmt.Sprintf("/api/connect/%s/start", provider)
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	return doRequest[StartConnectResponse](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}

// Attempt returns the current state of a connection attempt. Poll it as a
// fallback when the popup's completion message was missed.
func (s *ConnectService) Attempt(ctx context.Context, attemptID string) (*Attempt, error) {
	path := fmt.Sprintf("/api/attempts/%s", attemptID)
	out, err := doRequest[attemptResponse](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out.Attempt, nil
}
