package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. Service
// routes are static and take precedence over the redirect catch-all.
func RegisterRoutes(e *echo.Echo, redirect *RedirectHandler, health *HealthHandler) {
	e.GET("/_/healthz", health.Healthz)
	e.HEAD("/_/healthz", health.Healthz)
	e.GET("/_/status", health.Status)
	e.HEAD("/_/status", health.Status)

	e.GET("/*", redirect.Handle)
	e.HEAD("/*", redirect.Handle)
}

// RegisterMetrics exposes the Prometheus registry when metrics are enabled.
func RegisterMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
