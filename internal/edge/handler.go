// Package edge adapts the redirect service to CloudFront Lambda@Edge
// viewer-request events.
package edge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"redirect-lookup-go/internal/model"
	"redirect-lookup-go/internal/redirect"
	"redirect-lookup-go/internal/service"
	"redirect-lookup-go/internal/telemetry"
)

// ErrNoRequest is returned when the event carries no viewer request to pass
// through.
var ErrNoRequest = errors.New("event has no viewer request")

// Handler answers viewer-request events. A resolved redirect is returned as
// the CloudFront response object; every other outcome returns the viewer
// request unchanged so CloudFront forwards it to the origin.
type Handler struct {
	service *service.RedirectService
	tracing flusher
	logger  *slog.Logger
}

type flusher interface {
	ForceFlush(context.Context) error
}

// NewHandler creates a Handler. Spans buffered by tracing are flushed
// before each event returns.
func NewHandler(svc *service.RedirectService, tracing *telemetry.Provider, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		tracing: tracing,
		logger:  logger.With("component", "edge_handler"),
	}
}

// Handle is the Lambda entry point. The result is either a
// model.RedirectResponse or the raw viewer request.
func (h *Handler) Handle(ctx context.Context, event model.CloudFrontEvent) (any, error) {
	defer h.flush(ctx)
	return h.handle(ctx, event)
}

func (h *Handler) flush(ctx context.Context) {
	if err := h.tracing.ForceFlush(ctx); err != nil {
		h.logger.Warn("flush spans", "err", err)
	}
}

func (h *Handler) handle(ctx context.Context, event model.CloudFrontEvent) (any, error) {
	if len(event.Records) == 0 || len(event.Records[0].CF.Request) == 0 {
		h.logger.Error("malformed viewer-request event", "err", ErrNoRequest)
		return nil, ErrNoRequest
	}
	cf := event.Records[0].CF
	raw := cf.Request

	var req model.CloudFrontRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.logger.Warn("passing request through",
			"outcome", redirect.OutcomeExtraction,
			"request_id", cf.Config.RequestID,
			"err", fmt.Errorf("decode viewer request: %w", err),
		)
		return raw, nil
	}

	res, err := h.service.Resolve(ctx, req.Header("host"), req.URI)
	if err != nil {
		h.logger.Info("passing request through",
			"outcome", redirect.Outcome(err),
			"request_id", cf.Config.RequestID,
			"host", req.Header("host"),
			"uri", req.URI,
			"err", err,
		)
		return raw, nil
	}

	return res.Response, nil
}
