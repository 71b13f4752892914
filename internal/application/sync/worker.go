package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/blunderfixer/blunderfixer/internal/domain/drill"
	"github.com/blunderfixer/blunderfixer/internal/domain/game"
	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
	"github.com/blunderfixer/blunderfixer/internal/metrics"
)

// GameSource fetches a player's recent games from the external provider.
type GameSource interface {
	FetchRecent(ctx context.Context, username string) ([]game.Game, error)
}

// DrillWriter persists normalized games and derived drill candidates. Both
// operations are idempotent upserts, so re-running a job over games that
// were already synced writes nothing new.
type DrillWriter interface {
	UpsertGame(ctx context.Context, username string, g game.Game) (string, error)
	UpsertDrills(ctx context.Context, username, gameID string, candidates []drill.Candidate) (int64, error)
}

type workerJobRepo interface {
	ClaimNext(ctx context.Context, lease time.Duration) (*syncjob.SyncJob, error)
	Heartbeat(ctx context.Context, jobID string, lease time.Duration) error
	AdvanceProgress(ctx context.Context, jobID string, processed int64, total *int64) error
	Complete(ctx context.Context, jobID string, skipped int64) error
	Fail(ctx context.Context, jobID string, class syncjob.FailureClass, message string) error
	ReapExpired(ctx context.Context) (int64, error)
}

type WorkerConfig struct {
	Workers           int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	JobTimeout        time.Duration
	RateLimitRetries  uint64
	RetryInterval     time.Duration
}

// Worker drains queued sync jobs with a fixed-size pool. Each claimed job
// fetches the subject's recent games, derives drills per game and advances
// the job's progress counters after every game.
type Worker struct {
	repo   workerJobRepo
	source GameSource
	drills DrillWriter
	cfg    WorkerConfig
	log    zerolog.Logger

	once sync.Once
}

func NewWorker(repo workerJobRepo, source GameSource, drills DrillWriter, cfg WorkerConfig, log zerolog.Logger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.RateLimitRetries == 0 {
		cfg.RateLimitRetries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	return &Worker{
		repo:   repo,
		source: source,
		drills: drills,
		cfg:    cfg,
		log:    log,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		// Reconcile jobs orphaned by a previous process before claiming
		// new work.
		if reaped, err := w.repo.ReapExpired(ctx); err != nil {
			w.log.Error().Err(err).Msg("reap expired sync jobs")
		} else if reaped > 0 {
			w.log.Warn().Int64("count", reaped).Msg("failed orphaned sync jobs")
		}

		go w.reaperLoop(ctx)
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *Worker) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LeaseDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.repo.ReapExpired(ctx); err != nil {
				w.log.Error().Err(err).Msg("reap expired sync jobs")
			}
		}
	}
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.log.Error().Err(err).Msg("claim next sync job")
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		metrics.SyncWorkersBusy.Inc()
		if err := w.ProcessJob(ctx, *job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Str("username", job.Username).Msg("sync job failed")
		}
		metrics.SyncWorkersBusy.Dec()
	}
}

// ProcessJob runs one claimed job to a terminal state. Per-game failures
// are isolated: a malformed game is skipped and counted, it never aborts
// the rest of the job.
func (w *Worker) ProcessJob(ctx context.Context, job syncjob.SyncJob) error {
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	// The lease must stay renewed for the whole job, fetch included: a
	// slow archive walk would otherwise outlive the lease and get reaped
	// mid-flight.
	go w.keepAlive(jobCtx, cancel, job.ID)

	games, err := w.fetchWithRetry(jobCtx, job.Username)
	if err != nil {
		return w.failJob(ctx, job, err)
	}

	total := int64(len(games))
	if err := w.repo.AdvanceProgress(jobCtx, job.ID, 0, &total); err != nil {
		return w.failJob(ctx, job, fmt.Errorf("%w: record total: %v", syncjob.ErrStoreWrite, err))
	}

	var processed, skipped int64
	for _, g := range games {
		select {
		case <-jobCtx.Done():
			return w.failJob(ctx, job, jobCtx.Err())
		default:
		}

		if err := w.processGame(jobCtx, job.Username, g); err != nil {
			if errors.Is(err, syncjob.ErrInvalidGameData) {
				skipped++
				w.log.Warn().Err(err).Str("job_id", job.ID).Str("game_uuid", g.UUID).Msg("skipping malformed game")
				continue
			}
			return w.failJob(ctx, job, err)
		}

		processed++
		metrics.GamesProcessed.Inc()
		if err := w.repo.AdvanceProgress(jobCtx, job.ID, processed, nil); err != nil {
			return w.failJob(ctx, job, fmt.Errorf("%w: advance progress: %v", syncjob.ErrStoreWrite, err))
		}
	}

	if total > 0 && processed == 0 && skipped == total {
		return w.failJob(ctx, job, fmt.Errorf("%w: all %d games malformed", syncjob.ErrInvalidGameData, total))
	}

	if err := w.repo.Complete(ctx, job.ID, skipped); err != nil {
		return fmt.Errorf("complete sync job %s: %w", job.ID, err)
	}
	metrics.SyncJobsFinished.WithLabelValues(string(syncjob.StatusSucceeded)).Inc()
	w.log.Info().
		Str("job_id", job.ID).
		Str("username", job.Username).
		Int64("processed", processed).
		Int64("skipped", skipped).
		Msg("sync job succeeded")
	return nil
}

// keepAlive renews the job's lease on the heartbeat interval until the
// job context ends. A renewal that touches no row means the job was
// reaped or finished elsewhere, so processing is cancelled instead of
// racing the other writer.
func (w *Worker) keepAlive(ctx context.Context, cancel context.CancelFunc, jobID string) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.repo.Heartbeat(ctx, jobID, w.cfg.LeaseDuration); err != nil {
				w.log.Warn().Err(err).Str("job_id", jobID).Msg("lease renewal failed, abandoning job")
				cancel()
				return
			}
		}
	}
}

func (w *Worker) processGame(ctx context.Context, username string, g game.Game) error {
	if strings.TrimSpace(g.UUID) == "" {
		return fmt.Errorf("%w: game has no uuid", syncjob.ErrInvalidGameData)
	}

	candidates, err := drill.Derive(g, username)
	if err != nil {
		return err
	}

	gameID, err := w.drills.UpsertGame(ctx, username, g)
	if err != nil {
		return fmt.Errorf("%w: upsert game %s: %v", syncjob.ErrStoreWrite, g.UUID, err)
	}

	inserted, err := w.drills.UpsertDrills(ctx, username, gameID, candidates)
	if err != nil {
		return fmt.Errorf("%w: upsert drills for game %s: %v", syncjob.ErrStoreWrite, g.UUID, err)
	}
	if inserted > 0 {
		metrics.DrillsDerived.Add(float64(inserted))
	}
	return nil
}

// fetchWithRetry retries only rate-limit responses, with exponential
// backoff bounded by the retry budget and the job deadline. Every other
// adapter failure is terminal on first occurrence.
func (w *Worker) fetchWithRetry(ctx context.Context, username string) ([]game.Game, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.RetryInterval

	var games []game.Game
	operation := func() error {
		var err error
		games, err = w.source.FetchRecent(ctx, username)
		if err == nil {
			return nil
		}
		if errors.Is(err, syncjob.ErrAdapterRateLimited) {
			w.log.Warn().Err(err).Str("username", username).Msg("game source rate limited, backing off")
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), w.cfg.RateLimitRetries))
	if err != nil {
		return nil, err
	}
	return games, nil
}

// failJob records a terminal classified failure. The write happens on a
// context detached from the job deadline so a timed-out job can still be
// marked failed.
func (w *Worker) failJob(ctx context.Context, job syncjob.SyncJob, cause error) error {
	if errors.Is(cause, context.Canceled) {
		// Shutdown or an abandoned lease, not a job failure. The job row
		// is settled by the reaper or was already written by another
		// process.
		return cause
	}

	class := syncjob.Classify(cause)
	message := truncateReason(cause.Error())
	if errors.Is(cause, context.DeadlineExceeded) {
		class = syncjob.FailureAdapterUnreachable
		message = "timed out"
	}

	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if failErr := w.repo.Fail(failCtx, job.ID, class, message); failErr != nil {
		return fmt.Errorf("%v; fail update failed: %w", cause, failErr)
	}
	metrics.SyncJobsFinished.WithLabelValues(string(syncjob.StatusFailed)).Inc()
	return cause
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
