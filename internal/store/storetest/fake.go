// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sync/atomic"

	"redirect-lookup-go/internal/model"
	"redirect-lookup-go/internal/store"
)

// Fake serves records from a fixed map. It is safe for concurrent use as
// long as its fields are not modified after the first Lookup.
type Fake struct {
	Records map[model.RedirectKey]model.RedirectRecord
	// Err, when set, is returned by every Lookup.
	Err error
	// Block makes Lookup wait until ctx is done.
	Block bool

	calls atomic.Int64
}

// New returns a Fake holding recs.
func New(recs ...model.RedirectRecord) *Fake {
	f := &Fake{Records: make(map[model.RedirectKey]model.RedirectRecord, len(recs))}
	for _, r := range recs {
		f.Records[r.Key()] = r
	}
	return f
}

// Lookup implements store.Store.
func (f *Fake) Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error) {
	f.calls.Add(1)
	if f.Block {
		<-ctx.Done()
		return model.RedirectRecord{}, ctx.Err()
	}
	if f.Err != nil {
		return model.RedirectRecord{}, f.Err
	}
	rec, ok := f.Records[key]
	if !ok {
		return model.RedirectRecord{}, store.ErrNoRecord
	}
	return rec, nil
}

// Close implements store.Store.
func (f *Fake) Close() error { return nil }

// Calls returns the number of Lookup calls made so far.
func (f *Fake) Calls() int64 { return f.calls.Load() }
