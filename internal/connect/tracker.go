// Package connect tracks OAuth connection attempts. Each attempt walks
// awaiting_authorization → exchanging_code → connected|failed. The opener
// that launched the flow polls attempt status as a fallback completion
// signal for when the popup's message never arrives.
package connect

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creatorstack/socialgate/internal/provider"
)

// Status is the lifecycle state of one connection attempt.
type Status string

const (
	StatusAwaitingAuthorization Status = "awaiting_authorization"
	StatusExchangingCode        Status = "exchanging_code"
	StatusConnected             Status = "connected"
	StatusFailed                Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusConnected || s == StatusFailed
}

// Attempt is the ephemeral record of one OAuth handshake.
type Attempt struct {
	ID        uuid.UUID     `json:"attempt_id"`
	Provider  provider.Name `json:"provider"`
	UserID    string        `json:"user_id"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Tracker holds in-flight attempts in memory. Terminal attempts stay
// readable for ttl so a polling opener can still observe the outcome,
// then get swept.
type Tracker struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*Attempt
	ttl      time.Duration
}

const defaultTTL = 10 * time.Minute

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Tracker{
		attempts: make(map[uuid.UUID]*Attempt),
		ttl:      ttl,
	}
}

// Begin registers a new attempt in awaiting_authorization.
func (t *Tracker) Begin(name provider.Name, userID string) *Attempt {
	now := time.Now()
	a := &Attempt{
		ID:        uuid.New(),
		Provider:  name,
		UserID:    userID,
		Status:    StatusAwaitingAuthorization,
		StartedAt: now,
		UpdatedAt: now,
	}
	t.mu.Lock()
	t.attempts[a.ID] = a
	t.mu.Unlock()
	return a
}

// Get returns a copy of the attempt, or false if unknown or swept.
func (t *Tracker) Get(id uuid.UUID) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[id]
	if !ok {
		return Attempt{}, false
	}
	return *a, true
}

// BeginExchange moves the attempt into exchanging_code. It returns false
// when the attempt is unknown or already past awaiting_authorization,
// which is the guard against a replayed callback exchanging twice.
func (t *Tracker) BeginExchange(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[id]
	if !ok || a.Status != StatusAwaitingAuthorization {
		return false
	}
	a.Status = StatusExchangingCode
	a.UpdatedAt = time.Now()
	return true
}

// Complete marks the attempt connected. Terminal states are sticky.
func (t *Tracker) Complete(id uuid.UUID) {
	t.transition(id, StatusConnected, "")
}

// Fail marks the attempt failed with a human-readable message.
func (t *Tracker) Fail(id uuid.UUID, msg string) {
	t.transition(id, StatusFailed, msg)
}

func (t *Tracker) transition(id uuid.UUID, to Status, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[id]
	if !ok || a.Status.Terminal() {
		return
	}
	a.Status = to
	a.Error = msg
	a.UpdatedAt = time.Now()
}

// Run sweeps expired attempts until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep(time.Now())
		}
	}
}

func (t *Tracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, a := range t.attempts {
		if now.Sub(a.UpdatedAt) > t.ttl {
			delete(t.attempts, id)
		}
	}
}
