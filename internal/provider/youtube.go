package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const youtubeChannelsURL = "https://www.googleapis.com/youtube/v3/channels"

type YouTubeProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
	apiURL     string
}

// NewYouTubeProvider creates a Google OAuth2 provider scoped to YouTube
// upload and channel read access.
func NewYouTubeProvider(clientID, clientSecret, redirectURL string) *YouTubeProvider {
	return &YouTubeProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/youtube.upload",
				"https://www.googleapis.com/auth/youtube.readonly",
			},
			Endpoint: google.Endpoint,
		},
		httpClient: http.DefaultClient,
		apiURL:     youtubeChannelsURL,
	}
}

func (y *YouTubeProvider) AuthURL(state string) string {
	return y.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (y *YouTubeProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	t, err := y.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("youtube token exchange: %w", err)
	}
	return &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}, nil
}

func (y *YouTubeProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := y.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	t, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("youtube token refresh: %w", err)
	}
	return &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}, nil
}

// UserInfo fetches the authenticated user's own channel. An account with
// no channel is treated as an error since nothing can be uploaded to it.
func (y *YouTubeProvider) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	url := y.apiURL + "?part=snippet,statistics&mine=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube channels request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube channels returned %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				VideoCount      string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("youtube channels decode: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, fmt.Errorf("youtube account has no channel")
	}

	ch := body.Items[0]
	subs, _ := strconv.Atoi(ch.Statistics.SubscriberCount)
	videos, _ := strconv.Atoi(ch.Statistics.VideoCount)
	return &UserInfo{
		ID:             ch.ID,
		Username:       ch.Snippet.Title,
		AccountType:    "channel",
		FollowersCount: subs,
		MediaCount:     videos,
	}, nil
}
