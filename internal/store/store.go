// Package store provides read-only redirect stores keyed by (domain, path).
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
)

// ErrNoRecord is returned by Lookup when no record exists for the key.
var ErrNoRecord = errors.New("no redirect record")

// Attribute (column) names shared by every backend.
const (
	AttrDomain = "domain"
	AttrPath   = "path"
	AttrTarget = "target"
)

// Store is a read-only point-lookup store. Implementations are safe for
// concurrent use and are meant to be created once per process.
type Store interface {
	// Lookup returns the record stored under key, ErrNoRecord, or a
	// transport error. It never retries and never mutates the store.
	Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error)
	Close() error
}

// Open constructs the store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := OpenSQLite(cfg.Store.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendFile:
		s, err := OpenFile(cfg.Store.File, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendDynamoDB, "":
		s, err := OpenDynamo(ctx, cfg.Store.DynamoDB, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
