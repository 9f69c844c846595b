package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"azoom-rental-backend/internal/logger"
)

// StorageServiceName is the health service name reported for the key/value backend.
const StorageServiceName = "azoom.storage"

const DefaultCheckInterval = 15 * time.Second

// Pinger is anything whose liveness can be probed, such as the storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer serves the standard gRPC health protocol. The overall status
// and the storage service status follow the result of periodic pings.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	backend  Pinger
	interval time.Duration
}

func NewHealthServer(backend Pinger, interval time.Duration, opts ...grpc.ServerOption) *HealthServer {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	s := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)

	return &HealthServer{server: s, health: hs, backend: backend, interval: interval}
}

// Check pings the backend once and records the result.
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.backend.Ping(ctx); err != nil {
		logger.Warn("Storage health check failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(StorageServiceName, status)
	return status
}

// Serve runs the health checks and the gRPC server until ctx is done.
func (h *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	h.Check(ctx)
	go h.watch(ctx)

	go func() {
		<-ctx.Done()
		h.health.Shutdown()
		h.server.GracefulStop()
	}()

	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return h.server.Serve(lis)
}

func (h *HealthServer) watch(ctx context.Context) {
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
