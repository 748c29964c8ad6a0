// Package session holds the per-provider connection cache. One session
// exists per (provider, user); later writes overwrite earlier ones and no
// expiry is enforced on read — stale tokens are only discovered when a
// downstream call fails.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/creatorstack/socialgate/internal/provider"
)

// ErrNotFound is returned when no session exists for a provider/user pair.
var ErrNotFound = errors.New("session not found")

// AccountMeta carries the profile counters shown next to a connection.
type AccountMeta struct {
	FollowersCount int    `json:"followers_count,omitempty"`
	MediaCount     int    `json:"media_count,omitempty"`
	AccountType    string `json:"account_type,omitempty"`
}

// Session is the cached record of a completed OAuth connection.
type Session struct {
	Provider     provider.Name `json:"provider"`
	UserID       string        `json:"user_id"`
	Username     string        `json:"username"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	AccountMeta  AccountMeta   `json:"account_meta"`
	ConnectedAt  time.Time     `json:"connected_at"`
}

// Store is the session repository. All implementations overwrite
// unconditionally on Put, return ErrNotFound from Get when absent, and
// treat Clear of a missing session as a no-op.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, name provider.Name, userID string) (*Session, error)
	Clear(ctx context.Context, name provider.Name, userID string) error
}
