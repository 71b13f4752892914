package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

// SyncJobRepository is the durable job store. All lifecycle mutations are
// single guarded statements so concurrent workers can never race a job
// backwards through its state machine.
type SyncJobRepository struct {
	pool *pgxpool.Pool
}

func NewSyncJobRepository(pool *pgxpool.Pool) *SyncJobRepository {
	return &SyncJobRepository{pool: pool}
}

// Create enqueues a sync job for the username. If the user already has a
// job in queued or running state the existing job's id and status are
// returned with existing=true; the partial unique index on active jobs
// arbitrates concurrent callers.
func (r *SyncJobRepository) Create(ctx context.Context, username string) (string, syncjob.Status, bool, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var id string
		err := r.pool.QueryRow(ctx, `
INSERT INTO sync_jobs (username, status)
VALUES ($1, 'queued')
ON CONFLICT (username) WHERE status IN ('queued', 'running') DO NOTHING
RETURNING id
`, username).Scan(&id)
		if err == nil {
			return id, syncjob.StatusQueued, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", "", false, fmt.Errorf("insert sync job: %w", err)
		}

		// Conflict: an active job exists, return it.
		var status string
		err = r.pool.QueryRow(ctx, `
SELECT id, status FROM sync_jobs
WHERE username = $1 AND status IN ('queued', 'running')
ORDER BY created_at
LIMIT 1
`, username).Scan(&id, &status)
		if err == nil {
			return id, syncjob.Status(status), true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", "", false, fmt.Errorf("select active sync job: %w", err)
		}
		// The active job finished between the insert and the select; retry.
	}
	return "", "", false, fmt.Errorf("create sync job for %s: arbitration did not settle", username)
}

func (r *SyncJobRepository) Get(ctx context.Context, id string) (*syncjob.SyncJob, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, username, status, processed, total, skipped,
       error_class, error_message, created_at, started_at, finished_at
FROM sync_jobs
WHERE id = $1
`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, syncjob.ErrJobNotFound
		}
		return nil, fmt.Errorf("get sync job: %w", err)
	}
	return job, nil
}

// ClaimNext atomically moves the oldest queued job to running and leases it
// to the caller. Returns nil when no job is pending.
func (r *SyncJobRepository) ClaimNext(ctx context.Context, lease time.Duration) (*syncjob.SyncJob, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE sync_jobs
SET status = 'running',
    started_at = NOW(),
    heartbeat_at = NOW(),
    lease_expires_at = NOW() + make_interval(secs => $1),
    updated_at = NOW()
WHERE id = (
    SELECT id FROM sync_jobs
    WHERE status = 'queued'
    ORDER BY created_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, username, status, processed, total, skipped,
          error_class, error_message, created_at, started_at, finished_at
`, lease.Seconds())
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim next sync job: %w", err)
	}
	return job, nil
}

func (r *SyncJobRepository) Heartbeat(ctx context.Context, id string, lease time.Duration) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE sync_jobs
SET heartbeat_at = NOW(),
    lease_expires_at = NOW() + make_interval(secs => $2),
    updated_at = NOW()
WHERE id = $1 AND status = 'running'
`, id, lease.Seconds())
	if err != nil {
		return fmt.Errorf("heartbeat sync job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return syncjob.ErrJobNotFound
	}
	return nil
}

// AdvanceProgress records forward progress. The processed count never
// decreases and a known total is never shrunk.
func (r *SyncJobRepository) AdvanceProgress(ctx context.Context, id string, processed int64, total *int64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE sync_jobs
SET processed = GREATEST(processed, $2),
    total = CASE
        WHEN total IS NULL THEN $3
        WHEN $3 IS NULL THEN total
        ELSE GREATEST(total, $3)
    END,
    updated_at = NOW()
WHERE id = $1
`, id, processed, total)
	if err != nil {
		return fmt.Errorf("advance sync job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return syncjob.ErrJobNotFound
	}
	return nil
}

// Complete transitions a running job to succeeded, recording how many games
// were skipped as malformed along the way.
func (r *SyncJobRepository) Complete(ctx context.Context, id string, skipped int64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE sync_jobs
SET status = 'succeeded',
    skipped = $2,
    finished_at = NOW(),
    updated_at = NOW()
WHERE id = $1 AND status = 'running'
`, id, skipped)
	if err != nil {
		return fmt.Errorf("complete sync job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// Fail transitions a queued or running job to failed with a classified
// error. Already-terminal jobs are left untouched.
func (r *SyncJobRepository) Fail(ctx context.Context, id string, class syncjob.FailureClass, message string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE sync_jobs
SET status = 'failed',
    error_class = $2,
    error_message = $3,
    finished_at = NOW(),
    updated_at = NOW()
WHERE id = $1 AND status IN ('queued', 'running')
`, id, string(class), message)
	if err != nil {
		return fmt.Errorf("fail sync job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// ReapExpired fails running jobs whose lease has lapsed, which covers jobs
// orphaned by a process restart. Returns how many jobs were reaped.
func (r *SyncJobRepository) ReapExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE sync_jobs
SET status = 'failed',
    error_class = 'unknown',
    error_message = 'worker lease expired',
    finished_at = NOW(),
    updated_at = NOW()
WHERE status = 'running' AND lease_expires_at < NOW()
`)
	if err != nil {
		return 0, fmt.Errorf("reap expired sync jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// transitionFailure distinguishes a missing job from an illegal transition
// after a guarded update touched no rows.
func (r *SyncJobRepository) transitionFailure(ctx context.Context, id string) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM sync_jobs WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return syncjob.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect sync job status: %w", err)
	}
	return fmt.Errorf("%w: job %s is %s", syncjob.ErrInvalidTransition, id, status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*syncjob.SyncJob, error) {
	var (
		job        syncjob.SyncJob
		status     string
		errClass   *string
		errMessage *string
	)
	if err := row.Scan(
		&job.ID, &job.Username, &status,
		&job.Progress.Processed, &job.Progress.Total, &job.Skipped,
		&errClass, &errMessage,
		&job.CreatedAt, &job.StartedAt, &job.FinishedAt,
	); err != nil {
		return nil, err
	}
	job.Status = syncjob.Status(status)
	if errClass != nil {
		msg := ""
		if errMessage != nil {
			msg = *errMessage
		}
		job.Error = &syncjob.JobError{Class: syncjob.FailureClass(*errClass), Message: msg}
	}
	return &job, nil
}
