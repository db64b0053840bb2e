package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot_store",
		Name:      "operations_total",
		Help:      "Count of snapshot store operations.",
	}, []string{"backend", "operation", "status"})
	snapshotOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "snapshot_store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of snapshot store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation", "status"})
	snapshotBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "snapshot_store",
		Name:      "artifact_bytes",
		Help:      "Compressed size of written snapshot artifacts.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 12),
	}, []string{"backend", "artifact"})
)

// SnapshotStore tracks metrics for snapshot persistence.
type SnapshotStore struct {
	backend string
}

// NewSnapshotStore creates a SnapshotStore collector labelled with the backend.
func NewSnapshotStore(backend string) *SnapshotStore {
	if backend == "" {
		backend = "unknown"
	}
	return &SnapshotStore{backend: backend}
}

// Observe records duration and status of a snapshot operation.
func (m SnapshotStore) Observe(operation string, err error, started time.Time) {
	s := status(err)
	snapshotOperationsTotal.WithLabelValues(m.backend, operation, s).Inc()
	snapshotOperationDuration.WithLabelValues(m.backend, operation, s).Observe(time.Since(started).Seconds())
}

// ObserveArtifact records the encoded size of one artifact.
func (m SnapshotStore) ObserveArtifact(artifact string, size int) {
	snapshotBytes.WithLabelValues(m.backend, artifact).Observe(float64(size))
}
