// Package metrics exposes Prometheus collectors for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SyncJobsEnqueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blunderfixer_sync_jobs_enqueued_total",
			Help: "Total number of sync jobs enqueued",
		},
	)

	SyncJobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blunderfixer_sync_jobs_finished_total",
			Help: "Total number of sync jobs reaching a terminal state, by status",
		},
		[]string{"status"},
	)

	SyncWorkersBusy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blunderfixer_sync_workers_busy",
			Help: "Number of workers currently executing a sync job",
		},
	)

	GamesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blunderfixer_games_processed_total",
			Help: "Total number of games processed by sync jobs",
		},
	)

	DrillsDerived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blunderfixer_drills_derived_total",
			Help: "Total number of new drill positions derived from games",
		},
	)
)

// Register registers all collectors with the default registry. Call once
// at startup.
func Register() {
	prometheus.MustRegister(
		SyncJobsEnqueued,
		SyncJobsFinished,
		SyncWorkersBusy,
		GamesProcessed,
		DrillsDerived,
	)
}
