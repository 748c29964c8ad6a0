package worker

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/store"
)

// UploadExecutor performs a single claimed upload job.
type UploadExecutor interface {
	ExecuteUpload(ctx context.Context, job store.UploadJob) error
}

// Worker polls the database for pending upload jobs and executes them
// concurrently.
type Worker struct {
	queries     store.Querier
	executor    UploadExecutor
	concurrency int
	log         *zap.Logger
}

func New(queries store.Querier, executor UploadExecutor, concurrency int, log *zap.Logger) *Worker {
	return &Worker{
		queries:     queries,
		executor:    executor,
		concurrency: concurrency,
		log:         log,
	}
}

// Start spawns concurrency goroutines that each poll for jobs every 500ms.
// It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		go w.loop(ctx)
	}
	<-ctx.Done()
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	job, err := w.queries.ClaimNextUploadJob(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return
		}
		w.log.Error("claim error", zap.Error(err))
		return
	}

	execErr := w.executor.ExecuteUpload(ctx, job)

	now := time.Now()
	if execErr == nil {
		_, err = w.queries.UpdateUploadJobStatus(ctx, store.UpdateUploadJobStatusParams{
			ID:          job.ID,
			Status:      "completed",
			Error:       pgtype.Text{Valid: false},
			CompletedAt: &now,
			RunAt:       job.RunAt,
		})
		if err != nil {
			w.log.Error("mark completed error", zap.Error(err), zap.Stringer("job_id", job.ID))
		}
		return
	}

	// Job failed — retry with exponential backoff or mark as permanently failed.
	if job.Attempt < job.MaxAttempts {
		backoff := time.Duration(int64(1)<<uint(job.Attempt)) * 10 * time.Second
		_, err = w.queries.UpdateUploadJobStatus(ctx, store.UpdateUploadJobStatusParams{
			ID:     job.ID,
			Status: "pending",
			Error:  pgtype.Text{String: execErr.Error(), Valid: true},
			RunAt:  now.Add(backoff),
		})
	} else {
		_, err = w.queries.UpdateUploadJobStatus(ctx, store.UpdateUploadJobStatusParams{
			ID:     job.ID,
			Status: "failed",
			Error:  pgtype.Text{String: execErr.Error(), Valid: true},
			RunAt:  job.RunAt,
		})
	}
	if err != nil {
		w.log.Error("update status error", zap.Error(err), zap.Stringer("job_id", job.ID))
	}
}
