package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	graphBuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graph_builder",
		Name:      "operations_total",
		Help:      "Count of graph build and extend operations.",
	}, []string{"network", "operation", "status"})

	graphBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "graph_builder",
		Name:      "operation_duration_seconds",
		Help:      "Duration of graph build and extend operations.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"network", "operation", "status"})

	graphBuildBlocks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "graph_builder",
		Name:      "operation_blocks",
		Help:      "Number of blocks scanned per operation.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
	}, []string{"network", "operation"})

	graphSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph_builder",
		Name:      "size",
		Help:      "Vertex and edge counts of the last built graph.",
	}, []string{"network", "kind"})
)

// GraphBuilder tracks metrics for graph construction.
type GraphBuilder struct {
	network model.Network
}

// NewGraphBuilder constructs a GraphBuilder collector.
func NewGraphBuilder(network model.Network) *GraphBuilder {
	return &GraphBuilder{network: orUnknown(network)}
}

// Observe records one build or extend.
func (m GraphBuilder) Observe(operation string, err error, blocks int, started time.Time) {
	s := status(err)
	graphBuildTotal.WithLabelValues(string(m.network), operation, s).Inc()
	graphBuildDuration.WithLabelValues(string(m.network), operation, s).Observe(time.Since(started).Seconds())
	graphBuildBlocks.WithLabelValues(string(m.network), operation).Observe(float64(blocks))
}

// ObserveSize records the current graph size.
func (m GraphBuilder) ObserveSize(vertices, edges int) {
	graphSize.WithLabelValues(string(m.network), "vertices").Set(float64(vertices))
	graphSize.WithLabelValues(string(m.network), "edges").Set(float64(edges))
}
