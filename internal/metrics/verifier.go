package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifierBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "blocks_total",
		Help:      "Count of verified blocks, by result.",
	}, []string{"network", "result"})
	verifierRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "run_duration_seconds",
		Help:      "Duration of a verification run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"network", "status"})
)

// Verifier tracks metrics for stored block verification.
type Verifier struct {
	network model.Network
}

// NewVerifier constructs a Verifier collector.
func NewVerifier(network model.Network) *Verifier {
	return &Verifier{network: orUnknown(network)}
}

// ObserveBlock counts one verified block. Result is match, mismatch, missing or placeholder.
func (m Verifier) ObserveBlock(result string) {
	verifierBlocksTotal.WithLabelValues(string(m.network), result).Inc()
}

// ObserveRun records a verification run.
func (m Verifier) ObserveRun(err error, started time.Time) {
	s := status(err)
	verifierRunDuration.WithLabelValues(string(m.network), s).Observe(time.Since(started).Seconds())
}
