package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blunderfixer/blunderfixer/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "PORT",
		"SYNC_WORKERS", "SYNC_JOB_TIMEOUT", "SYNC_JOB_LEASE",
		"SYNC_POLL_INTERVAL", "SYNC_INTERVAL", "SYNC_MONTHS",
		"CHESS_API_BASE_URL", "LOG_LEVEL", "LOG_JSON",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 4, cfg.SyncWorkers)
	assert.Equal(t, 5*time.Minute, cfg.SyncJobTimeout)
	assert.Equal(t, 60*time.Second, cfg.SyncLease)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncPollInterval)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 2, cfg.SyncMonths)
	assert.Equal(t, "https://api.chess.com", cfg.ChessAPIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("SYNC_JOB_TIMEOUT", "90s")
	t.Setenv("SYNC_INTERVAL", "0s")
	t.Setenv("LOG_JSON", "true")

	cfg := config.Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 8, cfg.SyncWorkers)
	assert.Equal(t, 90*time.Second, cfg.SyncJobTimeout)
	assert.Equal(t, time.Duration(0), cfg.SyncInterval, "zero disables the in-process scheduler")
	assert.True(t, cfg.LogJSON)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("SYNC_WORKERS", "many")
	t.Setenv("SYNC_JOB_TIMEOUT", "soon")

	cfg := config.Load()

	assert.Equal(t, 4, cfg.SyncWorkers)
	assert.Equal(t, 5*time.Minute, cfg.SyncJobTimeout)
}
