// Package config reads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values.
type Config struct {
	DatabaseURL string
	Port        string

	// Sync orchestrator
	SyncWorkers      int
	SyncJobTimeout   time.Duration
	SyncLease        time.Duration
	SyncPollInterval time.Duration
	SyncInterval     time.Duration
	SyncMonths       int

	// Game source
	ChessAPIBaseURL string

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment. The scheduler cadence
// defaults to 15 minutes; zero disables the in-process trigger entirely.
func Load() Config {
	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getEnv("PORT", "8080"),

		SyncWorkers:      getIntEnv("SYNC_WORKERS", 4),
		SyncJobTimeout:   getDurationEnv("SYNC_JOB_TIMEOUT", 5*time.Minute),
		SyncLease:        getDurationEnv("SYNC_JOB_LEASE", 60*time.Second),
		SyncPollInterval: getDurationEnv("SYNC_POLL_INTERVAL", 500*time.Millisecond),
		SyncInterval:     getDurationEnv("SYNC_INTERVAL", 15*time.Minute),
		SyncMonths:       getIntEnv("SYNC_MONTHS", 2),

		ChessAPIBaseURL: getEnv("CHESS_API_BASE_URL", "https://api.chess.com"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnv("LOG_JSON", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
