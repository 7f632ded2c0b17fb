// Package metrics provides Prometheus metrics for the redirect service.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for request and lookup latency.
var defaultBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// Metrics holds all Prometheus metric collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	StoreLookupDuration *prometheus.HistogramVec
	ResolutionsTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redirect_lookup_http_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "route"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redirect_lookup_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "route"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redirect_lookup_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		StoreLookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redirect_lookup_store_lookup_duration_seconds",
			Help:    "Store point-lookup latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"backend"}),

		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redirect_lookup_resolutions_total",
			Help: "Redirect resolutions by store backend and outcome.",
		}, []string{"backend", "outcome"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.StoreLookupDuration,
		m.ResolutionsTotal,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// RouteRedirect labels requests served by the redirect catch-all.
const RouteRedirect = "redirect"

// RouteLabel maps an echo route template to a bounded label. Templates come
// from registered routes only, so service routes keep their own path. The
// catch-all reports as "redirect" and unmatched requests as "other".
func RouteLabel(template string) string {
	switch template {
	case "/*":
		return RouteRedirect
	case "":
		return "other"
	}
	if strings.HasPrefix(template, "/_/") {
		return template
	}
	return "other"
}
