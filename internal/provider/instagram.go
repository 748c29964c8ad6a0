package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	instagramAuthBase  = "https://api.instagram.com"
	instagramGraphBase = "https://graph.instagram.com"
)

// InstagramPlatformProvider integrates with the Instagram Platform API
// (formerly Basic Display). Exchange upgrades the short-lived token to a
// long-lived one in the same call since the short-lived token expires
// within an hour.
type InstagramPlatformProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	authBase     string
	graphBase    string
}

func NewInstagramPlatformProvider(clientID, clientSecret, redirectURL string) *InstagramPlatformProvider {
	return &InstagramPlatformProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   http.DefaultClient,
		authBase:     instagramAuthBase,
		graphBase:    instagramGraphBase,
	}
}

func (p *InstagramPlatformProvider) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("scope", "instagram_business_basic,instagram_business_content_publish")
	q.Set("response_type", "code")
	q.Set("state", state)
	return p.authBase + "/oauth/authorize?" + q.Encode()
}

// Exchange swaps the code for a short-lived token, then immediately
// upgrades it to a long-lived token. Both steps must succeed.
func (p *InstagramPlatformProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", p.redirectURL)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.authBase+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, graphError("instagram token exchange", resp)
	}

	var short struct {
		AccessToken string `json:"access_token"`
		UserID      any    `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&short); err != nil {
		return nil, fmt.Errorf("instagram token decode: %w", err)
	}
	if short.AccessToken == "" {
		return nil, fmt.Errorf("instagram token exchange: empty access token")
	}

	return p.upgradeToken(ctx, short.AccessToken)
}

// upgradeToken exchanges a short-lived token for a ~60 day one.
func (p *InstagramPlatformProvider) upgradeToken(ctx context.Context, shortToken string) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_exchange_token")
	q.Set("client_secret", p.clientSecret)
	q.Set("access_token", shortToken)

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.getJSON(ctx, p.graphBase+"/access_token?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("instagram long-lived exchange: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("instagram long-lived exchange: empty access token")
	}
	return &Token{
		AccessToken: out.AccessToken,
		Expiry:      time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}

// Refresh extends a long-lived token. Instagram has no separate refresh
// token; the access token itself is refreshed while still valid.
func (p *InstagramPlatformProvider) Refresh(ctx context.Context, accessToken string) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_refresh_token")
	q.Set("access_token", accessToken)

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.getJSON(ctx, p.graphBase+"/refresh_access_token?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("instagram token refresh: %w", err)
	}
	return &Token{
		AccessToken: out.AccessToken,
		Expiry:      time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}

func (p *InstagramPlatformProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	q := url.Values{}
	q.Set("fields", "id,username,account_type,media_count")
	q.Set("access_token", accessToken)

	var out struct {
		ID          string `json:"id"`
		Username    string `json:"username"`
		AccountType string `json:"account_type"`
		MediaCount  int    `json:"media_count"`
	}
	if err := p.getJSON(ctx, p.graphBase+"/me?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("instagram profile: %w", err)
	}
	if out.ID == "" || out.Username == "" {
		return nil, fmt.Errorf("instagram profile: missing id or username")
	}
	return &UserInfo{
		ID:          out.ID,
		Username:    out.Username,
		AccountType: out.AccountType,
		MediaCount:  out.MediaCount,
	}, nil
}

func (p *InstagramPlatformProvider) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return graphError("request", resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// graphError extracts the Graph API error message so users see
// "Invalid authorization code" instead of a bare status.
func graphError(op string, resp *http.Response) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error.Message != "" {
			return fmt.Errorf("%s: %s", op, body.Error.Message)
		}
		if body.ErrorMessage != "" {
			return fmt.Errorf("%s: %s", op, body.ErrorMessage)
		}
	}
	return fmt.Errorf("%s returned %d", op, resp.StatusCode)
}
