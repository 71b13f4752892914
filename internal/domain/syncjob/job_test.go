package syncjob_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := map[syncjob.Status][]syncjob.Status{
		syncjob.StatusQueued:    {syncjob.StatusRunning, syncjob.StatusFailed},
		syncjob.StatusRunning:   {syncjob.StatusSucceeded, syncjob.StatusFailed},
		syncjob.StatusSucceeded: {},
		syncjob.StatusFailed:    {},
	}

	all := []syncjob.Status{
		syncjob.StatusQueued,
		syncjob.StatusRunning,
		syncjob.StatusSucceeded,
		syncjob.StatusFailed,
	}

	for from, nexts := range allowed {
		ok := map[syncjob.Status]bool{}
		for _, next := range nexts {
			ok[next] = true
		}
		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, ok[to], got, "%s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, syncjob.StatusQueued.Terminal())
	assert.False(t, syncjob.StatusRunning.Terminal())
	assert.True(t, syncjob.StatusSucceeded.Terminal())
	assert.True(t, syncjob.StatusFailed.Terminal())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want syncjob.FailureClass
	}{
		{syncjob.ErrAdapterUnreachable, syncjob.FailureAdapterUnreachable},
		{syncjob.ErrAdapterRateLimited, syncjob.FailureAdapterRateLimited},
		{syncjob.ErrInvalidGameData, syncjob.FailureInvalidGameData},
		{syncjob.ErrStoreWrite, syncjob.FailureStoreWrite},
		{fmt.Errorf("fetch archives: %w", syncjob.ErrAdapterRateLimited), syncjob.FailureAdapterRateLimited},
		{errors.New("something else"), syncjob.FailureUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, syncjob.Classify(tt.err), "err %v", tt.err)
	}
}
