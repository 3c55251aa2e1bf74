// Package service hosts the orchestrator's sidecar HTTP endpoints:
// health checks and Prometheus metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/cirque-irc/conformance/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New() *Service {
	s := &Service{
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
	return s
}

func (s *Service) Start(ctx context.Context) {
	slog.Info("service starting")

	go func() {
		addr := net.JoinHostPort(HealthzHost, HealthzPort)
		slog.Info("starting healthz server", "addr", addr)
		if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		addr := net.JoinHostPort(MetricsHost, MetricsPort)
		slog.Info("starting metrics server", "addr", addr)
		if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	slog.Info("service started")
}

func (s *Service) Shutdown() {
	slog.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	slog.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	slog.Info("metrics stopped")

	slog.Info("service stopped")
}
