package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	metaDialogBase = "https://www.facebook.com/v19.0"
	metaGraphBase  = "https://graph.facebook.com/v19.0"
)

// InstagramMetaProvider connects an Instagram business account through the
// Facebook Graph API. The handshake is a chain of dependent calls: code →
// short-lived user token → long-lived token → page list → linked business
// account → business profile. Each step is gated on the previous one and
// the chain stops at the first failure.
type InstagramMetaProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	dialogBase   string
	graphBase    string
}

func NewInstagramMetaProvider(clientID, clientSecret, redirectURL string) *InstagramMetaProvider {
	return &InstagramMetaProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   http.DefaultClient,
		dialogBase:   metaDialogBase,
		graphBase:    metaGraphBase,
	}
}

func (p *InstagramMetaProvider) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("scope", "instagram_basic,instagram_content_publish,pages_show_list,pages_read_engagement")
	q.Set("response_type", "code")
	q.Set("state", state)
	return p.dialogBase + "/dialog/oauth?" + q.Encode()
}

// Exchange converts the code into a short-lived user token and upgrades it
// to a long-lived one (~60 days).
func (p *InstagramMetaProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("client_secret", p.clientSecret)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("code", code)

	var short struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.getJSON(ctx, "/oauth/access_token?"+q.Encode(), &short); err != nil {
		return nil, fmt.Errorf("meta token exchange: %w", err)
	}
	if short.AccessToken == "" {
		return nil, fmt.Errorf("meta token exchange: empty access token")
	}

	q = url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", p.clientID)
	q.Set("client_secret", p.clientSecret)
	q.Set("fb_exchange_token", short.AccessToken)

	var long struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.getJSON(ctx, "/oauth/access_token?"+q.Encode(), &long); err != nil {
		return nil, fmt.Errorf("meta long-lived exchange: %w", err)
	}
	if long.AccessToken == "" {
		return nil, fmt.Errorf("meta long-lived exchange: empty access token")
	}

	tok := &Token{AccessToken: long.AccessToken}
	if long.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(long.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// Refresh re-runs the fb_exchange_token grant against the current
// long-lived token. Meta issues no separate refresh token.
func (p *InstagramMetaProvider) Refresh(ctx context.Context, accessToken string) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", p.clientID)
	q.Set("client_secret", p.clientSecret)
	q.Set("fb_exchange_token", accessToken)

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.getJSON(ctx, "/oauth/access_token?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("meta token refresh: %w", err)
	}
	tok := &Token{AccessToken: out.AccessToken}
	if out.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// UserInfo walks pages → linked Instagram business account → profile.
func (p *InstagramMetaProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var pages struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, "/me/accounts?access_token="+url.QueryEscape(accessToken), &pages); err != nil {
		return nil, fmt.Errorf("meta page list: %w", err)
	}
	if len(pages.Data) == 0 {
		return nil, fmt.Errorf("no Facebook pages found for this account")
	}

	var igID string
	for _, page := range pages.Data {
		var detail struct {
			InstagramBusinessAccount struct {
				ID string `json:"id"`
			} `json:"instagram_business_account"`
		}
		path := fmt.Sprintf("/%s?fields=instagram_business_account&access_token=%s",
			page.ID, url.QueryEscape(accessToken))
		if err := p.getJSON(ctx, path, &detail); err != nil {
			return nil, fmt.Errorf("meta business account lookup: %w", err)
		}
		if detail.InstagramBusinessAccount.ID != "" {
			igID = detail.InstagramBusinessAccount.ID
			break
		}
	}
	if igID == "" {
		return nil, fmt.Errorf("no Instagram business account linked to any page")
	}

	var profile struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		FollowersCount int    `json:"followers_count"`
		MediaCount     int    `json:"media_count"`
	}
	path := fmt.Sprintf("/%s?fields=username,followers_count,media_count&access_token=%s",
		igID, url.QueryEscape(accessToken))
	if err := p.getJSON(ctx, path, &profile); err != nil {
		return nil, fmt.Errorf("meta business profile: %w", err)
	}
	if profile.Username == "" {
		return nil, fmt.Errorf("meta business profile: missing username")
	}

	return &UserInfo{
		ID:             igID,
		Username:       profile.Username,
		AccountType:    "business",
		FollowersCount: profile.FollowersCount,
		MediaCount:     profile.MediaCount,
	}, nil
}

func (p *InstagramMetaProvider) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphBase+path, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return graphError("graph", resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
