package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockStoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block_store",
		Name:      "operations_total",
		Help:      "Count of block store operations.",
	}, []string{"backend", "operation", "network", "status"})
	blockStoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "block_store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of block store operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"backend", "operation", "network", "status"})
)

// BlockStore tracks metrics for block store operations of one backend.
type BlockStore struct {
	backend string
}

// NewBlockStore creates a BlockStore metrics collector labelled with the storage backend.
func NewBlockStore(backend string) *BlockStore {
	if backend == "" {
		backend = "unknown"
	}
	return &BlockStore{backend: backend}
}

// Observe records duration and status of a store operation.
func (m BlockStore) Observe(operation string, network model.Network, err error, started time.Time) {
	s := status(err)
	network = orUnknown(network)

	blockStoreOperationsTotal.WithLabelValues(m.backend, operation, string(network), s).Inc()
	blockStoreOperationDuration.WithLabelValues(m.backend, operation, string(network), s).Observe(time.Since(started).Seconds())
}
