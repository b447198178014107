package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/getly/auth-service/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	buildInfo *prometheus.GaugeVec
	startedAt prometheus.Gauge
}

// Attach registers service-level collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	buildInfo := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "auth",
		Name:      "service_info",
		Help:      "Static service metadata as labels with a constant value of 1.",
	}, []string{"service", "env"})
	buildInfo.WithLabelValues(cfg.App.Name, cfg.App.Env).Set(1)

	startedAt := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "auth",
		Name:      "service_start_time_seconds",
		Help:      "Unix timestamp of service start.",
	})
	startedAt.Set(float64(time.Now().Unix()))

	return &Provider{
		buildInfo: buildInfo,
		startedAt: startedAt,
	}, nil
}
