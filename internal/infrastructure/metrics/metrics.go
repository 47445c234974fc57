package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the settlement engine.
type Metrics struct {
	// Batch metrics
	BatchRuns           prometheus.Counter
	BatchDuration       prometheus.Histogram
	ArtistsSucceeded    prometheus.Counter
	ArtistsFailed       prometheus.Counter
	ReconcileMismatches prometheus.Counter

	// Settlement metrics
	SettlementsBuilt prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		BatchRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settler_batch_runs_total",
			Help: "Total number of settlement batch runs",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settler_batch_duration_seconds",
			Help:    "Duration of settlement batch runs",
			Buckets: prometheus.DefBuckets,
		}),
		ArtistsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settler_artists_succeeded_total",
			Help: "Total artists settled successfully",
		}),
		ArtistsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settler_artists_failed_total",
			Help: "Total artists that failed settlement",
		}),
		ReconcileMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settler_reconcile_mismatches_total",
			Help: "Total batch runs with reconciliation mismatches",
		}),
		SettlementsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settler_settlements_built_total",
			Help: "Total artist settlements built",
		}),
	}
}

// ObserveRun implements usecase.RunRecorder.
func (m *Metrics) ObserveRun(succeeded, failed int, reconciled bool, elapsed time.Duration) {
	m.BatchRuns.Inc()
	m.BatchDuration.Observe(elapsed.Seconds())
	m.ArtistsSucceeded.Add(float64(succeeded))
	m.ArtistsFailed.Add(float64(failed))

	if !reconciled {
		m.ReconcileMismatches.Inc()
	}
}

// ObserveSettlement implements usecase.RunRecorder.
func (m *Metrics) ObserveSettlement(artist, payable string) {
	m.SettlementsBuilt.Inc()
}
