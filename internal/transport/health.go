package transport

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StatusService is the health service name of the status API.
const StatusService = "blockgraph7000.status"

const defaultProbeInterval = 10 * time.Second

// HealthProbe flips the gRPC health status of StatusService according to
// whether the snapshot store can be listed.
type HealthProbe struct {
	server    *health.Server
	snapshots SnapshotReader
	logger    *zap.Logger
	interval  time.Duration
}

// NewHealthProbe returns a probe reporting into server. A non-positive
// interval falls back to the default.
func NewHealthProbe(server *health.Server, snapshots SnapshotReader, interval time.Duration, logger *zap.Logger) *HealthProbe {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	server.SetServingStatus(StatusService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthProbe{server: server, snapshots: snapshots, logger: logger, interval: interval}
}

// Run probes until ctx ends, then marks every service as not serving.
func (p *HealthProbe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			p.server.Shutdown()
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe performs one check and updates the serving status.
func (p *HealthProbe) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if _, err := p.snapshots.Ranges(ctx); err != nil {
		p.logger.Warn("snapshot store probe failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	p.server.SetServingStatus(StatusService, status)
}
