package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilerPassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "pass_total",
		Help:      "Count of reconciliation passes.",
	}, []string{"network", "status"})

	reconcilerPassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "pass_duration_seconds",
		Help:      "Duration of a reconciliation pass.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 12),
	}, []string{"network", "status"})

	reconcilerBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "blocks_total",
		Help:      "Count of blocks handled, by phase and outcome.",
	}, []string{"network", "phase", "outcome"})

	reconcilerHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "height",
		Help:      "Last observed block number, by source.",
	}, []string{"network", "source"})
)

// Reconciler tracks metrics for the gap reconciler.
type Reconciler struct {
	network model.Network
}

// NewReconciler constructs a Reconciler collector.
func NewReconciler(network model.Network) *Reconciler {
	return &Reconciler{network: orUnknown(network)}
}

// ObservePass records a finished pass.
func (m Reconciler) ObservePass(err error, started time.Time) {
	s := status(err)
	reconcilerPassTotal.WithLabelValues(string(m.network), s).Inc()
	reconcilerPassDuration.WithLabelValues(string(m.network), s).Observe(time.Since(started).Seconds())
}

// ObserveBlock counts a single handled block. Phase is backfill or stream,
// outcome one of inserted, placeholder, duplicate or error.
func (m Reconciler) ObserveBlock(phase, outcome string) {
	reconcilerBlocksTotal.WithLabelValues(string(m.network), phase, outcome).Inc()
}

// ObserveHeights records the stored maximum and the remote chain height.
func (m Reconciler) ObserveHeights(stored, chain uint64) {
	reconcilerHeight.WithLabelValues(string(m.network), "store").Set(float64(stored))
	reconcilerHeight.WithLabelValues(string(m.network), "chain").Set(float64(chain))
}
