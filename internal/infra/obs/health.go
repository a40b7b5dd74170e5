package obs

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers exposes endpoints for liveness and readiness checks.
type HealthHandlers struct {
	Checks  map[string]ReadinessCheck
	Timeout time.Duration
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	failures := h.failures(c.Request.Context())
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "errors": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h HealthHandlers) failures(ctx context.Context) map[string]string {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out := map[string]string{}
	for name, check := range h.Checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			out[name] = err.Error()
		}
	}
	return out
}

// GRPCHealth serves the standard grpc.health.v1 service and keeps its status in
// sync with the readiness checks.
type GRPCHealth struct {
	server *grpc.Server
	health *health.Server
	checks HealthHandlers
	logger *slog.Logger
}

func NewGRPCHealth(checks HealthHandlers, logger *slog.Logger) *GRPCHealth {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &GRPCHealth{server: srv, health: hs, checks: checks, logger: logger}
}

// Serve blocks until ctx is cancelled or the listener fails.
func (g *GRPCHealth) Serve(ctx context.Context, addr string, interval time.Duration) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go g.watch(ctx, interval)
	go func() {
		<-ctx.Done()
		g.health.Shutdown()
		g.server.GracefulStop()
	}()
	if g.logger != nil {
		g.logger.Info("grpc health listening", "addr", addr)
	}
	return g.server.Serve(lis)
}

func (g *GRPCHealth) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		g.refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (g *GRPCHealth) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if failures := g.checks.failures(ctx); len(failures) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if g.logger != nil {
			g.logger.Warn("readiness degraded", "errors", failures)
		}
	}
	g.health.SetServingStatus("", status)
}
