package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/middleware"
)

func newLimitedEcho() *echo.Echo {
	e := echo.New()

	// 1 request per second, burst of 1: the second request should be rejected.
	e.Use(middleware.RateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1}))
	e.GET("/_/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/*", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "https://example.com/landing")
	})
	return e
}

func TestRateLimiter_Enabled(t *testing.T) {
	e := newLimitedEcho()

	req := httptest.NewRequest(http.MethodGet, "/promo123", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusFound)
	}

	got429 := false
	for range 10 {
		req = httptest.NewRequest(http.MethodGet, "/promo123", http.NoBody)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("expected at least one 429 response after burst, got none")
	}
}

func TestRateLimiter_SkipsServiceRoutes(t *testing.T) {
	e := newLimitedEcho()

	for i := range 10 {
		req := httptest.NewRequest(http.MethodGet, "/_/healthz", http.NoBody)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}
