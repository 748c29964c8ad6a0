package session

import (
	"context"
	"sync"

	"github.com/creatorstack/socialgate/internal/provider"
)

// MemoryStore is a mutex-guarded in-process Store. The default when no
// Postgres or Redis URL is configured; sessions do not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[memoryKey]Session
}

type memoryKey struct {
	provider provider.Name
	userID   string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[memoryKey]Session)}
}

func (m *MemoryStore) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[memoryKey{s.Provider, s.UserID}] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, name provider.Name, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[memoryKey{name, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Clear(_ context.Context, name provider.Name, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, memoryKey{name, userID})
	return nil
}
