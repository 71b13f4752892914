package syncjob

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Statuses never regress and terminal statuses never change.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning || next == StatusFailed
	case StatusRunning:
		return next == StatusSucceeded || next == StatusFailed
	default:
		return false
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// FailureClass categorizes why a sync job failed.
type FailureClass string

const (
	FailureAdapterUnreachable FailureClass = "adapter_unreachable"
	FailureAdapterRateLimited FailureClass = "adapter_rate_limited"
	FailureInvalidGameData    FailureClass = "invalid_game_data"
	FailureStoreWrite         FailureClass = "store_write_failure"
	FailureUnknown            FailureClass = "unknown"
)

// JobError is the classified failure recorded on a failed job.
type JobError struct {
	Class   FailureClass
	Message string
}

// Progress is the (processed, total) pair for a job. Total is nil until the
// game source has reported how many games the job will cover.
type Progress struct {
	Processed int64
	Total     *int64
}

type SyncJob struct {
	ID       string
	Username string
	Status   Status
	Progress Progress
	Skipped  int64
	Error    *JobError

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}
