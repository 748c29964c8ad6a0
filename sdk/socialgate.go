// Package socialgate provides a Go client for the Social Connect Gateway
// API.
//
// The gateway lets an application connect Instagram, TikTok, and YouTube
// accounts via OAuth and upload media through a backing service.
//
// Usage:
//
//	client := socialgate.New("https://gate.example.com")
//
//	// Start an OAuth connection and send the user to the auth URL
//	start, err := client.Connect.Start(ctx, "youtube", "user-123")
//
//	// Poll the attempt until it completes
//	attempt, err := client.Connect.Attempt(ctx, start.AttemptID)
//
//	// Read the cached session
//	sess, err := client.Sessions.Get(ctx, "youtube", "user-123")
package socialgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is the Social Connect Gateway API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Service accessors
	Connect  *ConnectService
	Sessions *SessionsService
	Uploads  *UploadsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a gateway client. baseURL should be the root URL
// (e.g. "https://gate.example.com").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	c.Connect = &ConnectService{c: c}
	c.Sessions = &SessionsService{c: c}
	c.Uploads = &UploadsService{c: c}
	return c
}

// Health checks that the gateway is reachable and healthy.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return doRequest[HealthResponse](ctx, c, http.MethodGet, "/health", nil, http.StatusOK)
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("socialgate: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, body any, expectedStatuses ...int) (*T, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	for _, s := range expectedStatuses {
		if resp.StatusCode == s {
			var out T
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, fmt.Errorf("socialgate: decode response: %w", err)
			}
			return &out, nil
		}
	}
	return nil, parseError(resp)
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
		e.Detail = body.Detail
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
