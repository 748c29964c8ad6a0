package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/store"
	"github.com/creatorstack/socialgate/internal/worker"
)

// stubQuerier implements store.Querier for worker tests. Only
// ClaimNextUploadJob and UpdateUploadJobStatus are exercised.
type stubQuerier struct {
	claimFn  func(ctx context.Context) (store.UploadJob, error)
	updateFn func(ctx context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error)
}

func (s *stubQuerier) ClaimNextUploadJob(ctx context.Context) (store.UploadJob, error) {
	if s.claimFn != nil {
		return s.claimFn(ctx)
	}
	return store.UploadJob{}, pgx.ErrNoRows
}
func (s *stubQuerier) UpdateUploadJobStatus(ctx context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, arg)
	}
	return store.UploadJob{}, nil
}
func (s *stubQuerier) CreateUploadJob(ctx context.Context, arg store.CreateUploadJobParams) (store.UploadJob, error) {
	return store.UploadJob{}, nil
}
func (s *stubQuerier) GetUploadJob(ctx context.Context, arg store.GetUploadJobParams) (store.UploadJob, error) {
	return store.UploadJob{}, pgx.ErrNoRows
}

// stubExecutor implements worker.UploadExecutor for tests.
type stubExecutor struct {
	executeFn func(ctx context.Context, job store.UploadJob) error
}

func (s *stubExecutor) ExecuteUpload(ctx context.Context, job store.UploadJob) error {
	if s.executeFn != nil {
		return s.executeFn(ctx, job)
	}
	return nil
}

// runWorkerUntilDone starts a single-goroutine worker and waits for done to
// be closed or the test to time out.
func runWorkerUntilDone(t *testing.T, q store.Querier, exec worker.UploadExecutor, done <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := worker.New(q, exec, 1, zap.NewNop())
	go w.Start(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for worker to process job")
	}
}

func makeJob(attempt, maxAttempts int32) store.UploadJob {
	return store.UploadJob{
		ID:          uuid.New(),
		Provider:    "tiktok",
		UserID:      "u1",
		Kind:        "video",
		MediaURL:    "https://cdn.example.com/x.mp4",
		Status:      "processing",
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		RunAt:       time.Now(),
	}
}

// claimOnce returns the job on the first claim and ErrNoRows afterwards.
func claimOnce(job store.UploadJob) func(ctx context.Context) (store.UploadJob, error) {
	claimed := false
	return func(_ context.Context) (store.UploadJob, error) {
		if claimed {
			return store.UploadJob{}, pgx.ErrNoRows
		}
		claimed = true
		return job, nil
	}
}

func TestWorker_NoJobs(t *testing.T) {
	// When no jobs are pending the worker should not touch job status.
	updateCalled := false
	q := &stubQuerier{
		updateFn: func(_ context.Context, _ store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
			updateCalled = true
			return store.UploadJob{}, nil
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w := worker.New(q, &stubExecutor{}, 1, zap.NewNop())
	w.Start(ctx) // blocks until timeout
	if updateCalled {
		t.Error("UpdateUploadJobStatus should not be called when there are no jobs")
	}
}

func TestWorker_JobSucceeds(t *testing.T) {
	job := makeJob(1, 3)
	var captured store.UpdateUploadJobStatusParams
	done := make(chan struct{})

	q := &stubQuerier{
		claimFn: claimOnce(job),
		updateFn: func(_ context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
			captured = arg
			close(done)
			return store.UploadJob{}, nil
		},
	}
	runWorkerUntilDone(t, q, &stubExecutor{}, done)

	if captured.Status != "completed" {
		t.Errorf("expected status=completed, got %s", captured.Status)
	}
	if captured.CompletedAt == nil {
		t.Error("expected CompletedAt to be set on success")
	}
	if captured.Error.Valid {
		t.Error("expected Error to be null on success")
	}
}

func TestWorker_JobFailsWithRetry(t *testing.T) {
	// attempt=1, max_attempts=3 → back to pending with a future run_at.
	job := makeJob(1, 3)
	execErr := errors.New("backend timeout")
	var captured store.UpdateUploadJobStatusParams
	done := make(chan struct{})

	q := &stubQuerier{
		claimFn: claimOnce(job),
		updateFn: func(_ context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
			captured = arg
			close(done)
			return store.UploadJob{}, nil
		},
	}
	exec := &stubExecutor{
		executeFn: func(_ context.Context, _ store.UploadJob) error { return execErr },
	}
	runWorkerUntilDone(t, q, exec, done)

	if captured.Status != "pending" {
		t.Errorf("expected status=pending for retry, got %s", captured.Status)
	}
	if !captured.Error.Valid || captured.Error.String != execErr.Error() {
		t.Errorf("expected error=%q, got %+v", execErr.Error(), captured.Error)
	}
	if captured.RunAt.Before(time.Now()) {
		t.Error("expected run_at in the future for retry backoff")
	}
	if captured.CompletedAt != nil {
		t.Error("expected CompletedAt to be nil on retry")
	}
}

func TestWorker_JobExhaustsRetries(t *testing.T) {
	// attempt=3, max_attempts=3 → marked failed, not retried.
	job := makeJob(3, 3)
	execErr := errors.New("permanent failure")
	var captured store.UpdateUploadJobStatusParams
	done := make(chan struct{})

	q := &stubQuerier{
		claimFn: claimOnce(job),
		updateFn: func(_ context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
			captured = arg
			close(done)
			return store.UploadJob{}, nil
		},
	}
	exec := &stubExecutor{
		executeFn: func(_ context.Context, _ store.UploadJob) error { return execErr },
	}
	runWorkerUntilDone(t, q, exec, done)

	if captured.Status != "failed" {
		t.Errorf("expected status=failed after exhausting retries, got %s", captured.Status)
	}
	if !captured.Error.Valid || captured.Error.String != execErr.Error() {
		t.Errorf("expected error=%q, got %+v", execErr.Error(), captured.Error)
	}
}

func TestWorker_BackoffGrowsWithAttempt(t *testing.T) {
	// Each successive retry schedules run_at further into the future.
	cases := []struct {
		attempt    int32
		minBackoff time.Duration
	}{
		{1, 20*time.Second - time.Second}, // 2^1 * 10s
		{2, 40*time.Second - time.Second}, // 2^2 * 10s
		{3, 80*time.Second - time.Second}, // 2^3 * 10s
	}

	for _, tc := range cases {
		tc := tc
		t.Run("attempt"+string(rune('0'+tc.attempt)), func(t *testing.T) {
			job := makeJob(tc.attempt, 10)
			var captured store.UpdateUploadJobStatusParams
			done := make(chan struct{})
			q := &stubQuerier{
				claimFn: claimOnce(job),
				updateFn: func(_ context.Context, arg store.UpdateUploadJobStatusParams) (store.UploadJob, error) {
					captured = arg
					close(done)
					return store.UploadJob{}, nil
				},
			}
			exec := &stubExecutor{
				executeFn: func(_ context.Context, _ store.UploadJob) error { return errors.New("fail") },
			}
			runWorkerUntilDone(t, q, exec, done)

			minRunAt := time.Now().Add(tc.minBackoff)
			if captured.RunAt.Before(minRunAt) {
				t.Errorf("attempt %d: expected run_at >= %v, got %v", tc.attempt, minRunAt, captured.RunAt)
			}
		})
	}
}

var _ store.Querier = (*stubQuerier)(nil)
var _ worker.UploadExecutor = (*stubExecutor)(nil)
