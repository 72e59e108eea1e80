package ncei

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// Store keeps a local cache of dataset files. Filenames embed a creation-date
// suffix and are therefore content-addressed: a cached file is always correct
// for its name, so the cache is never invalidated or evicted.
type Store struct {
	baseURL    string
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewStore creates a Store that caches downloads under dir.
func NewStore(baseURL, dir string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		baseURL:    baseURL,
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Ensure guarantees a local copy of filename exists and returns its path.
// A present file is returned without any freshness check; otherwise the
// remote file is streamed to disk. Concurrent callers may download the same
// file twice; the rename at the end makes that a wasted download, not a
// corrupted cache entry.
func (s *Store) Ensure(ctx context.Context, filename string) (string, error) {
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err == nil {
		s.metrics.DatasetCacheHits.Inc()
		return path, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+filename, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: status %d", filename, resp.StatusCode)
	}

	if err := s.writeAtomic(path, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	s.metrics.DatasetDownloads.Inc()
	s.logger.Info("dataset file cached", "file", filename)
	return path, nil
}

// CheckReadiness verifies the cache directory is usable. Wired to the
// readiness probe so the service reports unready on a bad mount.
func (s *Store) CheckReadiness(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cache dir unavailable: %w", err)
	}
	return nil
}

// writeAtomic streams r to a temp file and renames it into place, so an
// interrupted download never leaves a truncated file under the final name.
func (s *Store) writeAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".partial-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
