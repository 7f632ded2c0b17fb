package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"redirect-lookup-go/internal/redirect"
	"redirect-lookup-go/internal/service"
)

// RedirectHandler answers requests with the redirect stored for their host
// and first path segment.
type RedirectHandler struct {
	service *service.RedirectService
	logger  *slog.Logger
}

// NewRedirectHandler creates a RedirectHandler.
func NewRedirectHandler(svc *service.RedirectService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		service: svc,
		logger:  logger.With("component", "redirect_handler"),
	}
}

// Handle resolves the request and writes a 302 with the stored target as
// Location. The key is derived from the Host header and the escaped request
// path; the query string is not consulted.
func (h *RedirectHandler) Handle(c echo.Context) error {
	req := c.Request()

	res, err := h.service.Resolve(req.Context(), req.Host, req.URL.EscapedPath())
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Redirect(http.StatusFound, res.Target)
}

func (h *RedirectHandler) mapError(c echo.Context, err error) error {
	req := c.Request()

	switch {
	case errors.Is(err, redirect.ErrExtraction):
		h.logger.Debug("no redirect key", "err", err, "host", req.Host, "path", req.URL.Path)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "request has no redirect key",
		})

	case errors.Is(err, redirect.ErrNotFound):
		h.logger.Debug("redirect not found", "err", err)
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "redirect not found",
		})

	case errors.Is(err, redirect.ErrMalformedRecord):
		h.logger.Error("malformed redirect record", "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "redirect record is malformed",
		})
	}

	h.logger.Error("store lookup failed", "err", err, "host", req.Host, "path", req.URL.Path)

	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error": "store lookup timed out",
		})
	}

	if errors.Is(err, context.Canceled) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "client disconnected",
		})
	}

	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": "store lookup failed",
	})
}
