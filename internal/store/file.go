package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
)

// fileTable is the on-disk layout of a redirect file:
//
//	redirects:
//	  - domain: example.com
//	    path: promo123
//	    target: https://example.com/landing
type fileTable struct {
	Redirects []model.RedirectRecord `yaml:"redirects"`
}

var errEmptyFile = errors.New("redirect file is empty")

// FileStore serves redirects from a YAML file held in memory. With Watch
// enabled the file is re-read whenever it changes; a file that fails to
// parse leaves the previous table in place.
type FileStore struct {
	path    string
	records atomic.Pointer[map[model.RedirectKey]model.RedirectRecord]
	logger  *slog.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// OpenFile loads cfg.Path and optionally starts watching it.
func OpenFile(cfg config.FileConfig, logger *slog.Logger) (*FileStore, error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Path, err)
	}

	s := &FileStore{
		path:   path,
		logger: logger.With("component", "file_store", "path", path),
	}
	if err := s.load(true); err != nil {
		return nil, err
	}

	if cfg.Watch {
		if err := s.watch(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Lookup reads key from the in-memory table.
func (s *FileStore) Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.RedirectRecord{}, err
	}
	rec, ok := (*s.records.Load())[key]
	if !ok {
		return model.RedirectRecord{}, ErrNoRecord
	}
	return rec, nil
}

// Len returns the number of loaded records.
func (s *FileStore) Len() int {
	return len(*s.records.Load())
}

// Close stops the watcher, if any.
func (s *FileStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

// load reads and swaps in the table. A reload refuses an empty file: an
// in-place save truncates before writing, and the watcher sees that state.
func (s *FileStore) load(initial bool) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read redirect file: %w", err)
	}
	if !initial && len(bytes.TrimSpace(data)) == 0 {
		return errEmptyFile
	}

	records, err := parseFileTable(data)
	if err != nil {
		return fmt.Errorf("parse redirect file %s: %w", s.path, err)
	}

	s.records.Store(&records)
	s.logger.Info("redirect file loaded", "records", len(records))
	return nil
}

func parseFileTable(data []byte) (map[model.RedirectKey]model.RedirectRecord, error) {
	var table fileTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}

	records := make(map[model.RedirectKey]model.RedirectRecord, len(table.Redirects))
	for i, rec := range table.Redirects {
		if rec.Domain == "" || rec.Path == "" {
			return nil, fmt.Errorf("redirects[%d]: domain and path are required", i)
		}
		if _, dup := records[rec.Key()]; dup {
			return nil, fmt.Errorf("redirects[%d]: duplicate key (%s, %s)", i, rec.Domain, rec.Path)
		}
		records[rec.Key()] = rec
	}
	return records, nil
}

// watch observes the parent directory so that editors replacing the file
// atomically are picked up as well as in-place writes.
func (s *FileStore) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = w

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != s.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.load(false); err != nil {
					s.logger.Error("reload failed; keeping previous table", "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Error("watcher error", "err", err)
			}
		}
	}()
	return nil
}
