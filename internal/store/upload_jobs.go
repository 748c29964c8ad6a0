package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// UploadJob is one queued media upload.
type UploadJob struct {
	ID          uuid.UUID
	Provider    string
	UserID      string
	Kind        string
	MediaURL    string
	Caption     string
	Status      string
	Error       pgtype.Text
	Attempt     int32
	MaxAttempts int32
	RunAt       time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

const uploadJobColumns = `id, provider, user_id, kind, media_url, caption,
    status, error, attempt, max_attempts, run_at, completed_at, created_at`

func scanUploadJob(row interface{ Scan(dest ...any) error }) (UploadJob, error) {
	var j UploadJob
	err := row.Scan(&j.ID, &j.Provider, &j.UserID, &j.Kind, &j.MediaURL,
		&j.Caption, &j.Status, &j.Error, &j.Attempt, &j.MaxAttempts,
		&j.RunAt, &j.CompletedAt, &j.CreatedAt)
	return j, err
}

type CreateUploadJobParams struct {
	Provider    string
	UserID      string
	Kind        string
	MediaURL    string
	Caption     string
	MaxAttempts int32
}

func (q *Queries) CreateUploadJob(ctx context.Context, arg CreateUploadJobParams) (UploadJob, error) {
	const sql = `
INSERT INTO upload_jobs (provider, user_id, kind, media_url, caption, max_attempts)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + uploadJobColumns
	return scanUploadJob(q.db.QueryRow(ctx, sql,
		arg.Provider, arg.UserID, arg.Kind, arg.MediaURL, arg.Caption, arg.MaxAttempts))
}

type GetUploadJobParams struct {
	ID uuid.UUID
}

func (q *Queries) GetUploadJob(ctx context.Context, arg GetUploadJobParams) (UploadJob, error) {
	const sql = `SELECT ` + uploadJobColumns + ` FROM upload_jobs WHERE id = $1`
	return scanUploadJob(q.db.QueryRow(ctx, sql, arg.ID))
}

// ClaimNextUploadJob atomically claims the oldest due pending job.
// SKIP LOCKED lets concurrent workers claim distinct jobs.
func (q *Queries) ClaimNextUploadJob(ctx context.Context) (UploadJob, error) {
	const sql = `
UPDATE upload_jobs SET status = 'processing', attempt = attempt + 1
WHERE id = (
    SELECT id FROM upload_jobs
    WHERE status = 'pending' AND run_at <= now()
    ORDER BY run_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + uploadJobColumns
	return scanUploadJob(q.db.QueryRow(ctx, sql))
}

type UpdateUploadJobStatusParams struct {
	ID          uuid.UUID
	Status      string
	Error       pgtype.Text
	CompletedAt *time.Time
	RunAt       time.Time
}

func (q *Queries) UpdateUploadJobStatus(ctx context.Context, arg UpdateUploadJobStatusParams) (UploadJob, error) {
	const sql = `
UPDATE upload_jobs
SET status = $2, error = $3, completed_at = $4, run_at = $5
WHERE id = $1
RETURNING ` + uploadJobColumns
	return scanUploadJob(q.db.QueryRow(ctx, sql,
		arg.ID, arg.Status, arg.Error, arg.CompletedAt, arg.RunAt))
}
