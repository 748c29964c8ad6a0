package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorstack/socialgate/internal/crypto"
	"github.com/creatorstack/socialgate/internal/provider"
)

// PostgresStore persists sessions in the provider_sessions table. When an
// Encryptor is supplied, access and refresh tokens are encrypted at rest;
// profile fields stay plaintext so connection state can be listed without
// the key.
type PostgresStore struct {
	pool *pgxpool.Pool
	enc  *crypto.Encryptor
}

// NewPostgresStore creates a Store backed by pool. enc may be nil to store
// tokens unencrypted.
func NewPostgresStore(pool *pgxpool.Pool, enc *crypto.Encryptor) *PostgresStore {
	return &PostgresStore{pool: pool, enc: enc}
}

// Schema is the DDL for the provider_sessions table. Applied by the
// operator; kept here so the table shape lives next to the queries.
const Schema = `
CREATE TABLE IF NOT EXISTS provider_sessions (
    provider        TEXT NOT NULL,
    user_id         TEXT NOT NULL,
    username        TEXT NOT NULL,
    access_token    BYTEA NOT NULL,
    refresh_token   BYTEA,
    expires_at      TIMESTAMPTZ,
    followers_count INT NOT NULL DEFAULT 0,
    media_count     INT NOT NULL DEFAULT 0,
    account_type    TEXT NOT NULL DEFAULT '',
    connected_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (provider, user_id)
);`

func (p *PostgresStore) Put(ctx context.Context, s Session) error {
	access, err := p.seal(s.AccessToken)
	if err != nil {
		return fmt.Errorf("sealing access token: %w", err)
	}
	var refresh []byte
	if s.RefreshToken != "" {
		refresh, err = p.seal(s.RefreshToken)
		if err != nil {
			return fmt.Errorf("sealing refresh token: %w", err)
		}
	}

	const q = `
INSERT INTO provider_sessions
    (provider, user_id, username, access_token, refresh_token, expires_at,
     followers_count, media_count, account_type, connected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (provider, user_id) DO UPDATE SET
    username = EXCLUDED.username,
    access_token = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    expires_at = EXCLUDED.expires_at,
    followers_count = EXCLUDED.followers_count,
    media_count = EXCLUDED.media_count,
    account_type = EXCLUDED.account_type,
    connected_at = EXCLUDED.connected_at`

	connectedAt := s.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now()
	}
	_, err = p.pool.Exec(ctx, q,
		s.Provider, s.UserID, s.Username, access, refresh, s.ExpiresAt,
		s.AccountMeta.FollowersCount, s.AccountMeta.MediaCount,
		s.AccountMeta.AccountType, connectedAt)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, name provider.Name, userID string) (*Session, error) {
	const q = `
SELECT username, access_token, refresh_token, expires_at,
       followers_count, media_count, account_type, connected_at
FROM provider_sessions
WHERE provider = $1 AND user_id = $2`

	var (
		s       = Session{Provider: name, UserID: userID}
		access  []byte
		refresh []byte
	)
	err := p.pool.QueryRow(ctx, q, name, userID).Scan(
		&s.Username, &access, &refresh, &s.ExpiresAt,
		&s.AccountMeta.FollowersCount, &s.AccountMeta.MediaCount,
		&s.AccountMeta.AccountType, &s.ConnectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.AccessToken, err = p.open(access); err != nil {
		return nil, fmt.Errorf("opening access token: %w", err)
	}
	if len(refresh) > 0 {
		if s.RefreshToken, err = p.open(refresh); err != nil {
			return nil, fmt.Errorf("opening refresh token: %w", err)
		}
	}
	return &s, nil
}

func (p *PostgresStore) Clear(ctx context.Context, name provider.Name, userID string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM provider_sessions WHERE provider = $1 AND user_id = $2`,
		name, userID)
	return err
}

func (p *PostgresStore) seal(token string) ([]byte, error) {
	if p.enc == nil {
		return []byte(token), nil
	}
	return p.enc.Encrypt([]byte(token))
}

func (p *PostgresStore) open(data []byte) (string, error) {
	if p.enc == nil {
		return string(data), nil
	}
	plain, err := p.enc.Decrypt(data)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
