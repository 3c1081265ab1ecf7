package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PatchesCommittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "peerdag_patches_committed_total",
			Help: "Total number of patches committed to the integrated set",
		},
	)

	PatchesStashedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "peerdag_patches_stashed_total",
			Help: "Total number of patches stashed pending missing ancestors",
		},
	)

	PatchesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "peerdag_patches_rejected_total",
			Help: "Total number of patches rejected during integrate due to signature verification failure",
		},
	)

	IntegrateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "peerdag_integrate_duration_seconds",
			Help:    "Time taken by a single Peer.Integrate call in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "peerdag_reconciliation_cycles_total",
			Help: "Total number of Sync calls run by the reconciliation driver, whether or not they succeeded",
		},
	)

	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "peerdag_reconciliation_duration_seconds",
			Help:    "Time taken for a full Sync or Bisync call in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(PatchesCommittedTotal)
	prometheus.MustRegister(PatchesStashedTotal)
	prometheus.MustRegister(PatchesRejectedTotal)
	prometheus.MustRegister(IntegrateDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(ReconciliationDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
