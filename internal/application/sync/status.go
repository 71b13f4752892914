package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

type jobReader interface {
	Get(ctx context.Context, id string) (*syncjob.SyncJob, error)
}

type GetSyncJobInput struct {
	ID string
}

type GetSyncJobOutput struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Status     string     `json:"status"`
	Processed  int64      `json:"processed"`
	Total      *int64     `json:"total"`
	Skipped    int64      `json:"skipped"`
	ErrorClass string     `json:"error_class,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type GetSyncJob interface {
	Execute(ctx context.Context, in GetSyncJobInput) (GetSyncJobOutput, error)
}

type getSyncJob struct {
	jobs jobReader
}

func NewGetSyncJob(jobs jobReader) GetSyncJob {
	return &getSyncJob{jobs: jobs}
}

func (uc *getSyncJob) Execute(ctx context.Context, in GetSyncJobInput) (GetSyncJobOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetSyncJobOutput{}, ErrInvalidJobID
	}

	job, err := uc.jobs.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, syncjob.ErrJobNotFound) {
			return GetSyncJobOutput{}, ErrJobNotFound
		}
		return GetSyncJobOutput{}, fmt.Errorf("%w: %v", ErrGetSyncJob, err)
	}

	out := GetSyncJobOutput{
		ID:         job.ID,
		Username:   job.Username,
		Status:     string(job.Status),
		Processed:  job.Progress.Processed,
		Total:      job.Progress.Total,
		Skipped:    job.Skipped,
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Error != nil {
		out.ErrorClass = string(job.Error.Class)
		out.Error = job.Error.Message
	}
	return out, nil
}
