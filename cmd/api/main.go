package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	syncapp "github.com/blunderfixer/blunderfixer/internal/application/sync"
	"github.com/blunderfixer/blunderfixer/internal/bootstrap"
	"github.com/blunderfixer/blunderfixer/internal/config"
	"github.com/blunderfixer/blunderfixer/internal/infrastructure/chesscom"
	"github.com/blunderfixer/blunderfixer/internal/infrastructure/repository"
	"github.com/blunderfixer/blunderfixer/internal/logging"
	"github.com/blunderfixer/blunderfixer/internal/metrics"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	metrics.Register()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("create pgx pool")
	}
	defer pool.Close()

	server := bootstrap.NewHTTPServer(db, pool, log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	jobRepo := repository.NewSyncJobRepository(pool)
	drillRepo := repository.NewDrillRepository(db)
	source := chesscom.NewClient(
		chesscom.WithBaseURL(cfg.ChessAPIBaseURL),
		chesscom.WithMonths(cfg.SyncMonths),
	)

	worker := syncapp.NewWorker(jobRepo, source, drillRepo, syncapp.WorkerConfig{
		Workers:       cfg.SyncWorkers,
		PollInterval:  cfg.SyncPollInterval,
		LeaseDuration: cfg.SyncLease,
		JobTimeout:    cfg.SyncJobTimeout,
	}, logging.WithComponent(log, "sync-worker"))
	worker.Start(workerCtx)

	if cfg.SyncInterval > 0 {
		enqueueAll := syncapp.NewEnqueueAllSync(
			jobRepo,
			repository.NewActiveUserRepository(db),
			logging.WithComponent(log, "scheduler"),
		)
		go runScheduler(workerCtx, enqueueAll, cfg.SyncInterval, logging.WithComponent(log, "scheduler"))
	}

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
}

// runScheduler is the in-process fallback for the external cron trigger:
// every interval it enqueues a sync for all active users. Users already
// mid-sync are skipped by the job store's uniqueness arbitration.
func runScheduler(ctx context.Context, enqueueAll syncapp.EnqueueAllSync, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out, err := enqueueAll.Execute(ctx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled sync-all failed")
				continue
			}
			log.Info().Int("users", len(out.Results)).Msg("scheduled sync-all enqueued")
		}
	}
}
