package sync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/blunderfixer/blunderfixer/internal/application/sync"
	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

type activeJob struct {
	id     string
	status syncjob.Status
}

type fakeJobCreator struct {
	active map[string]activeJob
	nextID string
	errFor map[string]error
	calls  []string
}

func (f *fakeJobCreator) Create(ctx context.Context, username string) (string, syncjob.Status, bool, error) {
	f.calls = append(f.calls, username)
	if err := f.errFor[username]; err != nil {
		return "", "", false, err
	}
	if job, ok := f.active[username]; ok {
		return job.id, job.status, true, nil
	}
	if f.active == nil {
		f.active = map[string]activeJob{}
	}
	f.active[username] = activeJob{id: f.nextID, status: syncjob.StatusQueued}
	return f.nextID, syncjob.StatusQueued, false, nil
}

type fakeRoster struct {
	usernames []string
	err       error
	addErr    error
	added     []string
}

func (f *fakeRoster) ListUsernames(ctx context.Context) ([]string, error) {
	return f.usernames, f.err
}

func (f *fakeRoster) Add(ctx context.Context, username string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, username)
	return nil
}

func TestEnqueueUserSync(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobCreator{nextID: "7b0d3f30-17a1-4dd8-8906-0f9f8f44fd6f"}
	roster := &fakeRoster{}
	uc := appsync.NewEnqueueUserSync(jobs, roster)

	out, err := uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "7b0d3f30-17a1-4dd8-8906-0f9f8f44fd6f", out.JobID)
	assert.Equal(t, "queued", out.Status)
	assert.False(t, out.AlreadyActive)
	assert.Equal(t, []string{"alice"}, roster.added, "first sync enrolls the user for scheduled re-syncs")

	// A second enqueue while the job is active returns the same job.
	again, err := uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, out.JobID, again.JobID)
	assert.Equal(t, "queued", again.Status)
	assert.True(t, again.AlreadyActive)
}

func TestEnqueueUserSyncReportsActiveJobStatus(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobCreator{active: map[string]activeJob{
		"alice": {id: "running-job", status: syncjob.StatusRunning},
	}}
	uc := appsync.NewEnqueueUserSync(jobs, &fakeRoster{})

	out, err := uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "running-job", out.JobID)
	assert.Equal(t, "running", out.Status)
	assert.True(t, out.AlreadyActive)
}

func TestEnqueueUserSyncInvalidUsername(t *testing.T) {
	t.Parallel()

	uc := appsync.NewEnqueueUserSync(&fakeJobCreator{nextID: "x"}, &fakeRoster{})

	for _, username := range []string{"", "ab", "has space", "semi;colon", "héllo"} {
		_, err := uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: username})
		assert.ErrorIs(t, err, appsync.ErrInvalidUsername, "username %q", username)
	}
}

func TestEnqueueUserSyncRepoError(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobCreator{errFor: map[string]error{"alice": errors.New("db down")}}
	uc := appsync.NewEnqueueUserSync(jobs, &fakeRoster{})

	_, err := uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: "alice"})
	assert.ErrorIs(t, err, appsync.ErrEnqueueSyncJob)

	uc = appsync.NewEnqueueUserSync(&fakeJobCreator{nextID: "x"}, &fakeRoster{addErr: errors.New("db down")})
	_, err = uc.Execute(context.Background(), appsync.EnqueueUserSyncInput{Username: "alice"})
	assert.ErrorIs(t, err, appsync.ErrEnqueueSyncJob)
}

func TestEnqueueAllSyncIsolatesFailures(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobCreator{
		nextID: "job-id",
		errFor: map[string]error{"bob": errors.New("db down")},
	}
	roster := &fakeRoster{usernames: []string{"alice", "bob", "carol"}}
	uc := appsync.NewEnqueueAllSync(jobs, roster, zerolog.Nop())

	out, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 3)

	assert.Equal(t, "alice", out.Results[0].Username)
	assert.Empty(t, out.Results[0].Error)

	assert.Equal(t, "bob", out.Results[1].Username)
	assert.Empty(t, out.Results[1].JobID)
	assert.NotEmpty(t, out.Results[1].Error)

	assert.Equal(t, "carol", out.Results[2].Username)
	assert.Empty(t, out.Results[2].Error)

	assert.Equal(t, []string{"alice", "bob", "carol"}, jobs.calls)
}

func TestEnqueueAllSyncRosterError(t *testing.T) {
	t.Parallel()

	uc := appsync.NewEnqueueAllSync(&fakeJobCreator{}, &fakeRoster{err: errors.New("db down")}, zerolog.Nop())

	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, appsync.ErrEnqueueSyncJob)
}
