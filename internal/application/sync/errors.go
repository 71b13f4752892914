package sync

import "errors"

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidJobID    = errors.New("invalid job id")
	ErrJobNotFound     = errors.New("sync job not found")
	ErrEnqueueSyncJob  = errors.New("failed to enqueue sync job")
	ErrGetSyncJob      = errors.New("failed to get sync job")
)
