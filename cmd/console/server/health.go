package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"user-admin-console/internal/adapter/gin/router"
)

const probeTimeout = 2 * time.Second

// HealthReporter publishes the console's dependency probes through the
// standard gRPC health service, for orchestrators that speak grpc_health_v1.
type HealthReporter struct {
	server   *health.Server
	service  string
	probes   map[string]router.Probe
	interval time.Duration
	log      *zap.Logger
}

// NewHealthReporter creates a reporter. Every service starts NOT_SERVING
// until the first Check.
func NewHealthReporter(service string, probes map[string]router.Probe, interval time.Duration, l *zap.Logger) *HealthReporter {
	h := &HealthReporter{
		server:   health.NewServer(),
		service:  service,
		probes:   probes,
		interval: interval,
		log:      l,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Check runs every probe once and updates the served status.
func (h *HealthReporter) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	healthy := true
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			healthy = false
			h.log.Warn("health probe failed", zap.String("probe", name), zap.Error(err))
		}
	}

	if healthy {
		h.set(healthpb.HealthCheckResponse_SERVING)
	} else {
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

// Run checks immediately and then on every interval until ctx is done.
func (h *HealthReporter) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for every service and ignores later updates.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(h.service, status)
}

// SetupGRPCHealth creates a gRPC server that only serves the health service.
func SetupGRPCHealth(reporter *HealthReporter) *grpc.Server {
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, reporter.server)
	return grpcServer
}
