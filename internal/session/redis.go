package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/creatorstack/socialgate/internal/provider"
)

// RedisStore persists sessions as JSON values keyed by provider and user.
// No TTL is set: sessions live until explicitly cleared or overwritten.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(name provider.Name, userID string) string {
	return fmt.Sprintf("session:%s:%s", name, userID)
}

func (r *RedisStore) Put(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return r.client.Set(ctx, redisKey(s.Provider, s.UserID), raw, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, name provider.Name, userID string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(name, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Clear(ctx context.Context, name provider.Name, userID string) error {
	return r.client.Del(ctx, redisKey(name, userID)).Err()
}
