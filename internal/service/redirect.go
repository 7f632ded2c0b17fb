// Package service implements redirect resolution: key extraction, store
// lookup and response construction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/metrics"
	"redirect-lookup-go/internal/model"
	"redirect-lookup-go/internal/redirect"
	"redirect-lookup-go/internal/store"
)

const tracerName = "redirect-lookup-go/internal/service"

// RedirectService resolves requests to redirects. It holds no per-request
// state and is safe for concurrent use.
type RedirectService struct {
	store   store.Store
	backend string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewRedirectService creates a RedirectService over s.
// The metrics parameter is optional; pass nil to disable outcome counting.
func NewRedirectService(s store.Store, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RedirectService {
	return &RedirectService{
		store:   s,
		backend: cfg.Store.Backend,
		logger:  logger.With("component", "redirect_service"),
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

// Resolve runs extract → lookup → build exactly once for a request. Any
// failure ends resolution immediately and is returned as a *redirect.Error;
// no response is built before the store lookup has returned.
//
// Cancellation of ctx abandons the lookup; the error then matches both
// redirect.ErrStore and the context error.
func (s *RedirectService) Resolve(ctx context.Context, host, uri string) (model.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "redirect.resolve")
	defer span.End()

	res, err := s.resolve(ctx, host, uri)

	outcome := redirect.Outcome(err)
	span.SetAttributes(attribute.String("redirect.outcome", outcome))
	if s.metrics != nil {
		s.metrics.ResolutionsTotal.WithLabelValues(s.backend, outcome).Inc()
	}

	if err != nil {
		span.RecordError(err)
		switch outcome {
		case redirect.OutcomeStoreError, redirect.OutcomeMalformed, redirect.OutcomeTimeout:
			span.SetStatus(codes.Error, outcome)
		}
	}
	return res, err
}

func (s *RedirectService) resolve(ctx context.Context, host, uri string) (model.Resolution, error) {
	key, err := redirect.ExtractKey(host, uri)
	if err != nil {
		s.logger.Debug("key extraction failed", "host", host, "uri", uri, "err", err)
		return model.Resolution{}, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("redirect.domain", key.Domain),
		attribute.String("redirect.path", key.Path),
	)

	rec, err := s.store.Lookup(ctx, key)
	if errors.Is(err, store.ErrNoRecord) {
		return model.Resolution{}, &redirect.Error{Kind: redirect.ErrNotFound, Key: key}
	}
	if err != nil {
		// Not every client wraps the context error; attach it so callers
		// can tell cancellation from a store fault.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return model.Resolution{}, &redirect.Error{Kind: redirect.ErrStore, Key: key, Err: err}
	}

	resp, err := redirect.BuildResponse(rec)
	if err != nil {
		return model.Resolution{}, err
	}

	s.logger.Info("redirecting",
		"host", key.Domain,
		"path", key.Path,
		"target", rec.Target,
	)

	return model.Resolution{Key: key, Target: rec.Target, Response: resp}, nil
}
