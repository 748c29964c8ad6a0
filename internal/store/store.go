// Package store persists async upload jobs in Postgres.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Querier is the query surface used by handlers and the worker; tests
// substitute a stub.
type Querier interface {
	CreateUploadJob(ctx context.Context, arg CreateUploadJobParams) (UploadJob, error)
	GetUploadJob(ctx context.Context, arg GetUploadJobParams) (UploadJob, error)
	ClaimNextUploadJob(ctx context.Context) (UploadJob, error)
	UpdateUploadJobStatus(ctx context.Context, arg UpdateUploadJobStatusParams) (UploadJob, error)
}

var _ Querier = (*Queries)(nil)

// Schema is the DDL for the upload_jobs table.
const Schema = `
CREATE TABLE IF NOT EXISTS upload_jobs (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    provider     TEXT NOT NULL,
    user_id      TEXT NOT NULL,
    kind         TEXT NOT NULL,
    media_url    TEXT NOT NULL,
    caption      TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'pending',
    error        TEXT,
    attempt      INT NOT NULL DEFAULT 0,
    max_attempts INT NOT NULL DEFAULT 3,
    run_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    completed_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS upload_jobs_pending_idx
    ON upload_jobs (run_at) WHERE status = 'pending';`
