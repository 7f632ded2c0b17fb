package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
)

const redirectsYAML = `
redirects:
  - domain: example.com
    path: promo123
    target: https://example.com/landing
  - domain: example.com
    path: broken
`

func writeYAML(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// replaceYAML swaps the file in with a rename, the way editors and config
// management tools do, so the watcher never observes a half-written file.
func replaceYAML(t *testing.T, path, data string) {
	t.Helper()
	tmp := path + ".tmp"
	writeYAML(t, tmp, data)
	require.NoError(t, os.Rename(tmp, path))
}

func TestFileStore_Lookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	writeYAML(t, path, redirectsYAML)

	s, err := OpenFile(config.FileConfig{Path: path}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, 2, s.Len())

	ctx := context.Background()
	rec, err := s.Lookup(ctx, model.RedirectKey{Domain: "example.com", Path: "promo123"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing", rec.Target)

	rec, err = s.Lookup(ctx, model.RedirectKey{Domain: "example.com", Path: "broken"})
	require.NoError(t, err)
	assert.Empty(t, rec.Target)

	_, err = s.Lookup(ctx, model.RedirectKey{Domain: "Example.com", Path: "promo123"})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestFileStore_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	writeYAML(t, path, redirectsYAML)

	s, err := OpenFile(config.FileConfig{Path: path}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Lookup(ctx, model.RedirectKey{Domain: "example.com", Path: "promo123"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFileTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "redirects: [unterminated"},
		{"missing path", "redirects:\n  - domain: example.com\n    target: https://t\n"},
		{"missing domain", "redirects:\n  - path: go\n    target: https://t\n"},
		{"duplicate", "redirects:\n  - {domain: d, path: p, target: a}\n  - {domain: d, path: p, target: b}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFileTable([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFileStore_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	writeYAML(t, path, redirectsYAML)

	s, err := OpenFile(config.FileConfig{Path: path, Watch: true}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key := model.RedirectKey{Domain: "example.com", Path: "fresh"}
	replaceYAML(t, path, redirectsYAML+"  - {domain: example.com, path: fresh, target: https://example.com/new}\n")

	assert.Eventually(t, func() bool {
		rec, err := s.Lookup(context.Background(), key)
		return err == nil && rec.Target == "https://example.com/new"
	}, 5*time.Second, 20*time.Millisecond)

	// A broken rewrite keeps the last good table.
	replaceYAML(t, path, "redirects: [unterminated")
	time.Sleep(100 * time.Millisecond)

	rec, err := s.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new", rec.Target)
}

func TestFileStore_ReloadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	writeYAML(t, path, redirectsYAML)

	s, err := OpenFile(config.FileConfig{Path: path}, discardLogger())
	require.NoError(t, err)

	// What an in-place save looks like between truncate and write.
	writeYAML(t, path, "")
	require.ErrorIs(t, s.load(false), errEmptyFile)

	rec, err := s.Lookup(context.Background(), model.RedirectKey{Domain: "example.com", Path: "promo123"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing", rec.Target)
	assert.Equal(t, 2, s.Len())
}

func TestFileStore_WatchSurvivesInPlaceSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	writeYAML(t, path, redirectsYAML)

	s, err := OpenFile(config.FileConfig{Path: path, Watch: true}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	promo := model.RedirectKey{Domain: "example.com", Path: "promo123"}

	writeYAML(t, path, "")
	time.Sleep(100 * time.Millisecond)

	rec, err := s.Lookup(context.Background(), promo)
	require.NoError(t, err, "truncated file must not replace the live table")
	assert.Equal(t, "https://example.com/landing", rec.Target)

	writeYAML(t, path, redirectsYAML+"  - {domain: example.com, path: saved, target: https://example.com/saved}\n")
	assert.Eventually(t, func() bool {
		_, err := s.Lookup(context.Background(), model.RedirectKey{Domain: "example.com", Path: "saved"})
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
