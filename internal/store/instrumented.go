package store

import (
	"context"
	"time"

	"redirect-lookup-go/internal/metrics"
	"redirect-lookup-go/internal/model"
)

type instrumented struct {
	Store
	backend string
	metrics *metrics.Metrics
}

// Instrument records lookup latency for s under the backend label.
// A nil m returns s unchanged.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, backend: backend, metrics: m}
}

func (s *instrumented) Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error) {
	start := time.Now()
	rec, err := s.Store.Lookup(ctx, key)
	s.metrics.StoreLookupDuration.WithLabelValues(s.backend).Observe(time.Since(start).Seconds())
	return rec, err
}
