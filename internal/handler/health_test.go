package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
	"redirect-lookup-go/internal/store/storetest"
)

func TestHealthz(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/_/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(&config.Config{}, "test")
	if err := h.Healthz(c); err != nil {
		t.Fatalf("Healthz() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestStatus(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/_/status", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendSQLite},
	}
	h := NewHealthHandler(cfg, "1.2.3")
	if err := h.Status(c); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body.status = %q, want %q", body["status"], "ok")
	}
	if body["version"] != "1.2.3" {
		t.Errorf("body.version = %q, want %q", body["version"], "1.2.3")
	}
	if body["store_backend"] != config.BackendSQLite {
		t.Errorf("body.store_backend = %q, want %q", body["store_backend"], config.BackendSQLite)
	}
}

func TestHealthRoutes_NotShadowedByRedirects(t *testing.T) {
	// Records named after the service routes only answer at their canonical
	// URIs; the reserved paths stay with the health handler.
	redirect := newTestRedirectHandler(storetest.New(
		model.RedirectRecord{Domain: "example.com", Path: "healthz", Target: "https://example.com/h"},
		model.RedirectRecord{Domain: "example.com", Path: "status", Target: "https://example.com/s"},
	))
	e := echo.New()
	RegisterRoutes(e, redirect, NewHealthHandler(&config.Config{Store: config.StoreConfig{Backend: config.BackendFile}}, "test"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/_/healthz"},
		{http.MethodHead, "/_/healthz"},
		{http.MethodGet, "/_/status"},
		{http.MethodHead, "/_/status"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com"+tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if loc := rec.Header().Get("Location"); loc != "" {
				t.Errorf("Location = %q, want none", loc)
			}
		})
	}
}
