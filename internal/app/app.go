// Package app assembles the dependency graph shared by the HTTP server and
// the edge function.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/metrics"
	"redirect-lookup-go/internal/service"
	"redirect-lookup-go/internal/store"
	"redirect-lookup-go/internal/telemetry"
)

// Core provides configuration, logging, tracing, the redirect store and the
// redirect service. Callers supply *config.CLI and one of Metrics or
// NoMetrics.
var Core = fx.Module("core",
	fx.Provide(
		config.Load,
		NewLogger,
		newTracing,
		newStore,
		service.NewRedirectService,
	),
	// Install the tracer provider before anything starts serving.
	fx.Invoke(func(*telemetry.Provider) {}),
)

// Metrics provides the Prometheus registry for processes that expose it.
var Metrics = fx.Provide(metrics.New)

// NoMetrics provides a nil registry. The edge function has no scrape
// endpoint, so store and service counters are turned off there.
var NoMetrics = fx.Provide(func() *metrics.Metrics { return nil })

// FxLogger routes fx lifecycle events through the application logger.
var FxLogger = fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
	l := &fxevent.SlogLogger{Logger: logger.With("component", "fx")}
	l.UseLogLevel(slog.LevelDebug)
	return l
})

// NewLogger builds the process logger from the log section, writing to stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.Log)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (store.Store, error) {
	s, err := store.Open(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Info("redirect store opened", "backend", cfg.Store.Backend)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})

	return store.Instrument(s, cfg.Store.Backend, m), nil
}

func newTracing(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*telemetry.Provider, error) {
	p, err := telemetry.SetupProvider(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	lc.Append(fx.Hook{
		OnStop: p.Shutdown,
	})
	return p, nil
}
