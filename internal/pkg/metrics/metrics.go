package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dusthunter"

var (
	// PriceFetches counts per-symbol oracle lookups by outcome (ok, error, no_pairs, bad_price).
	PriceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "price_fetches_total",
		Help:      "Per-symbol price lookups against DEX Screener by outcome.",
	}, []string{"outcome"})

	// ReconciliationPasses counts completed reconciliation passes.
	ReconciliationPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "passes_total",
		Help:      "Reconciliation passes by result (applied, stale).",
	}, []string{"result"})

	ReconciliationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one reconciliation pass.",
		Buckets:   prometheus.DefBuckets,
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "active_sessions",
		Help:      "Holdings sessions currently reconciling.",
	})

	// AnalysisUplinks counts analysis requests by outcome (ok, failed).
	AnalysisUplinks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "uplinks_total",
		Help:      "Analysis uplink calls by outcome.",
	}, []string{"outcome"})

	WatchlistSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "watchlist",
		Name:      "entries",
		Help:      "Monitored wallets in the watchlist.",
	})

	WatchlistPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "watchlist",
		Name:      "persist_failures_total",
		Help:      "Failed writes of the watchlist storage slot.",
	})
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PriceFetches,
			ReconciliationPasses,
			ReconciliationDuration,
			ActiveSessions,
			AnalysisUplinks,
			WatchlistSize,
			WatchlistPersistFailures,
		)
	})
}
