package provider

import (
	"context"
	"fmt"
	"time"
)

// Name identifies a social provider variant.
type Name string

const (
	InstagramMeta     Name = "instagram_meta"
	InstagramGraph    Name = "instagram_graph"
	InstagramPlatform Name = "instagram_platform"
	TikTok            Name = "tiktok"
	YouTube           Name = "youtube"
)

// ParseName validates a provider string from a URL segment.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case InstagramMeta, InstagramGraph, InstagramPlatform, TikTok, YouTube:
		return Name(s), nil
	}
	return "", fmt.Errorf("unsupported provider: %s", s)
}

// Token holds OAuth credentials for a connected account.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// UserInfo describes the connected account's public profile.
type UserInfo struct {
	ID             string
	Username       string
	AccountType    string
	FollowersCount int
	MediaCount     int
}

// Provider defines the interface each directly-integrated OAuth provider
// must implement. Providers whose exchange runs through the Backend
// Gateway are not represented here.
type Provider interface {
	// AuthURL returns the URL to redirect the user to for authorization.
	AuthURL(state string) string
	// Exchange converts an authorization code into a Token.
	Exchange(ctx context.Context, code string) (*Token, error)
	// Refresh obtains a new access token using the refresh token.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	// UserInfo fetches the account profile for an access token.
	UserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}
