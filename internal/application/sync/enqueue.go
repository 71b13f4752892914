package sync

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
	"github.com/blunderfixer/blunderfixer/internal/metrics"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

type jobCreator interface {
	Create(ctx context.Context, username string) (string, syncjob.Status, bool, error)
}

type activeRoster interface {
	ListUsernames(ctx context.Context) ([]string, error)
}

type rosterWriter interface {
	Add(ctx context.Context, username string) error
}

type EnqueueUserSyncInput struct {
	Username string
}

type EnqueueUserSyncOutput struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	AlreadyActive bool   `json:"already_active"`
}

type EnqueueUserSync interface {
	Execute(ctx context.Context, in EnqueueUserSyncInput) (EnqueueUserSyncOutput, error)
}

type enqueueUserSync struct {
	jobs   jobCreator
	roster rosterWriter
}

func NewEnqueueUserSync(jobs jobCreator, roster rosterWriter) EnqueueUserSync {
	return &enqueueUserSync{jobs: jobs, roster: roster}
}

// Execute enqueues a sync job for one user and enrolls the user in the
// active roster for scheduled re-syncs. A user already mid-sync gets the
// existing job id back instead of a duplicate job; the call never waits
// for the job to run.
func (uc *enqueueUserSync) Execute(ctx context.Context, in EnqueueUserSyncInput) (EnqueueUserSyncOutput, error) {
	if !usernamePattern.MatchString(in.Username) {
		return EnqueueUserSyncOutput{}, ErrInvalidUsername
	}

	if err := uc.roster.Add(ctx, in.Username); err != nil {
		return EnqueueUserSyncOutput{}, fmt.Errorf("%w: %v", ErrEnqueueSyncJob, err)
	}

	jobID, status, existing, err := uc.jobs.Create(ctx, in.Username)
	if err != nil {
		return EnqueueUserSyncOutput{}, fmt.Errorf("%w: %v", ErrEnqueueSyncJob, err)
	}
	if !existing {
		metrics.SyncJobsEnqueued.Inc()
	}

	return EnqueueUserSyncOutput{
		JobID:         jobID,
		Status:        string(status),
		AlreadyActive: existing,
	}, nil
}

type EnqueueAllResult struct {
	Username      string `json:"username"`
	JobID         string `json:"job_id,omitempty"`
	Status        string `json:"status,omitempty"`
	AlreadyActive bool   `json:"already_active"`
	Error         string `json:"error,omitempty"`
}

type EnqueueAllSyncOutput struct {
	Results []EnqueueAllResult `json:"results"`
}

type EnqueueAllSync interface {
	Execute(ctx context.Context) (EnqueueAllSyncOutput, error)
}

type enqueueAllSync struct {
	jobs   jobCreator
	roster activeRoster
	log    zerolog.Logger
}

func NewEnqueueAllSync(jobs jobCreator, roster activeRoster, log zerolog.Logger) EnqueueAllSync {
	return &enqueueAllSync{jobs: jobs, roster: roster, log: log}
}

// Execute enqueues a sync job for every active user. One user's enqueue
// failing never blocks the rest; the per-user outcome is reported in
// enqueue order.
func (uc *enqueueAllSync) Execute(ctx context.Context) (EnqueueAllSyncOutput, error) {
	usernames, err := uc.roster.ListUsernames(ctx)
	if err != nil {
		return EnqueueAllSyncOutput{}, fmt.Errorf("%w: list active users: %v", ErrEnqueueSyncJob, err)
	}

	results := make([]EnqueueAllResult, 0, len(usernames))
	for _, username := range usernames {
		jobID, status, existing, err := uc.jobs.Create(ctx, username)
		if err != nil {
			uc.log.Error().Err(err).Str("username", username).Msg("enqueue sync job")
			results = append(results, EnqueueAllResult{Username: username, Error: err.Error()})
			continue
		}
		if !existing {
			metrics.SyncJobsEnqueued.Inc()
		}
		results = append(results, EnqueueAllResult{
			Username:      username,
			JobID:         jobID,
			Status:        string(status),
			AlreadyActive: existing,
		})
	}

	return EnqueueAllSyncOutput{Results: results}, nil
}
