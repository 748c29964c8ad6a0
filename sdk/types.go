package socialgate

import "time"

// Provider name constants accepted by the gateway.
const (
	ProviderInstagramMeta     = "instagram_meta"
	ProviderInstagramGraph    = "instagram_graph"
	ProviderInstagramPlatform = "instagram_platform"
	ProviderTikTok            = "tiktok"
	ProviderYouTube           = "youtube"
)

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- Connect ---

// StartConnectResponse is returned when a connection attempt is opened.
type StartConnectResponse struct {
	Success   bool   `json:"success"`
	AuthURL   string `json:"auth_url"`
	AttemptID string `json:"attempt_id"`
}

// Attempt describes one OAuth handshake's lifecycle state.
type Attempt struct {
	ID        string    `json:"attempt_id"`
	Provider  string    `json:"provider"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attempt status constants.
const (
	AttemptAwaitingAuthorization = "awaiting_authorization"
	AttemptExchangingCode        = "exchanging_code"
	AttemptConnected             = "connected"
	AttemptFailed                = "failed"
)

type attemptResponse struct {
	Success bool    `json:"success"`
	Attempt Attempt `json:"attempt"`
}

// --- Sessions ---

// AccountMeta carries profile counters for a connected account.
type AccountMeta struct {
	FollowersCount int    `json:"followers_count,omitempty"`
	MediaCount     int    `json:"media_count,omitempty"`
	AccountType    string `json:"account_type,omitempty"`
}

// Session is the cached record of a completed OAuth connection.
type Session struct {
	Provider     string      `json:"provider"`
	UserID       string      `json:"user_id"`
	Username     string      `json:"username"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	AccountMeta  AccountMeta `json:"account_meta"`
	ConnectedAt  time.Time   `json:"connected_at"`
}

type sessionResponse struct {
	Success bool    `json:"success"`
	Session Session `json:"session"`
}

// StatusResponse is a generic success/status envelope.
type StatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// RefreshResponse is returned by POST /api/session/:provider/refresh.
type RefreshResponse struct {
	Success   bool       `json:"success"`
	Provider  string     `json:"provider"`
	UserID    string     `json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// --- Uploads ---

// Upload kind constants.
const (
	UploadKindReel  = "reel"
	UploadKindStory = "story"
	UploadKindVideo = "video"
)

// CreateUploadRequest queues an async media upload.
type CreateUploadRequest struct {
	Provider string `json:"provider"`
	UserID   string `json:"user_id,omitempty"`
	Kind     string `json:"kind"`
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption,omitempty"`
}

// CreateUploadResponse is returned when an upload job is queued.
type CreateUploadResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
}

// UploadJob is the status of a queued upload.
type UploadJob struct {
	Success     bool       `json:"success"`
	JobID       string     `json:"job_id"`
	Provider    string     `json:"provider"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Attempt     int        `json:"attempt"`
	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Upload job status constants.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)
