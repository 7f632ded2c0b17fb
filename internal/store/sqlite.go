package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	_ "modernc.org/sqlite"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
)

// SQLiteStore reads redirects from a table shaped like
//
//	CREATE TABLE redirects (
//	    domain TEXT NOT NULL,
//	    path   TEXT NOT NULL,
//	    target TEXT,
//	    PRIMARY KEY (domain, path)
//	);
//
// Comparisons use SQLite's default BINARY collation, so keys match
// case-sensitively like the DynamoDB backend.
type SQLiteStore struct {
	db     *sql.DB
	query  string
	logger *slog.Logger
}

// OpenSQLite opens the database at cfg.Path read-only.
func OpenSQLite(cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	dsn, err := sqliteURI(cfg.Path, "ro")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.Path, err)
	}

	return NewSQLiteStore(db, cfg.Table, logger), nil
}

// sqliteURI builds a URI filename for path opened in mode. The path is made
// absolute and percent-escaped so '?', '#' and '%' stay part of the name.
func sqliteURI(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sqlite path %s: %w", path, err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: url.Values{"mode": {mode}}.Encode(),
	}
	return u.String(), nil
}

// NewSQLiteStore wraps an open database. table must be a plain identifier;
// config validation guarantees this for configured tables.
func NewSQLiteStore(db *sql.DB, table string, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db: db,
		query: fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s = ?",
			AttrTarget, table, AttrDomain, AttrPath),
		logger: logger.With("component", "sqlite_store", "table", table),
	}
}

// Lookup runs a single point query for key.
func (s *SQLiteStore) Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error) {
	var target sql.NullString
	err := s.db.QueryRowContext(ctx, s.query, key.Domain, key.Path).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RedirectRecord{}, ErrNoRecord
	}
	if err != nil {
		return model.RedirectRecord{}, fmt.Errorf("sqlite query: %w", err)
	}

	return model.RedirectRecord{Domain: key.Domain, Path: key.Path, Target: target.String}, nil
}

// Close releases the connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
