package socialgate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SessionsService reads and manages cached provider connections.
type SessionsService struct {
	c *Client
}

func sessionPath(provider, userID, suffix string) string {
	path := fmt.Sprintf("/api/session/%s%s", provider, suffix)
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	return path
}

// Get returns the cached session for a provider, or an APIError with
// status 404 when the account is not connected.
func (s *SessionsService) Get(ctx context.Context, provider, userID string) (*Session, error) {
	out, err := doRequest[sessionResponse](ctx, s.c, http.MethodGet,
		sessionPath(provider, userID, ""), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out.Session, nil
}

// Disconnect clears the cached session. Disconnecting an already
// disconnected provider is a no-op.
func (s *SessionsService) Disconnect(ctx context.Context, provider, userID string) error {
	_, err := doRequest[StatusResponse](ctx, s.c, http.MethodDelete,
		sessionPath(provider, userID, ""), nil, http.StatusOK)
	return err
}

// Refresh renews the stored access token for providers with a direct
// integration.
func (s *SessionsService) Refresh(ctx context.Context, provider, userID string) (*RefreshResponse, error) {
	return doRequest[RefreshResponse](ctx, s.c, http.MethodPost,
		sessionPath(provider, userID, "/refresh"), nil, http.StatusOK)
}
