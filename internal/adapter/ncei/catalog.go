// Package ncei acquires NOAA NCEI Storm Events dataset files: it discovers
// the authoritative file for a year from the server's directory listing,
// maintains an on-disk cache of downloaded files, and streams rows out of
// the gzip-compressed CSVs.
package ncei

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// detailsFileRe matches Storm Events details filenames in the directory
// listing, capturing the data year and the 8-digit creation-date suffix.
var detailsFileRe = regexp.MustCompile(`StormEvents_details-ftp_v1\.0_d(\d{4})_c(\d{8})\.csv\.gz`)

// Catalog resolves the authoritative dataset filename for a year by scraping
// the NCEI directory listing. The raw listing body is cached in memory with a
// TTL so a ten-year scan costs one listing fetch.
type Catalog struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	ttl        time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu        sync.Mutex
	listing   string
	fetchedAt time.Time
}

// NewCatalog creates a Catalog for the given listing URL.
func NewCatalog(baseURL string, timeout, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Catalog {
	return &Catalog{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
		ttl:        ttl,
		logger:     logger,
		metrics:    metrics,
	}
}

// ResolveFilename returns the dataset filename for the given year, choosing
// the lexicographically greatest creation suffix when NCEI has published
// multiple exports. The suffix is a fixed-width YYYYMMDD encoding, so string
// order equals chronological order. Returns domain.ErrNoDatasetForYear when
// the listing has no file for the year.
func (c *Catalog) ResolveFilename(ctx context.Context, year int) (string, error) {
	listing, err := c.listingBody(ctx)
	if err != nil {
		return "", err
	}

	wantYear := strconv.Itoa(year)
	var best, bestSuffix string
	for _, m := range detailsFileRe.FindAllStringSubmatch(listing, -1) {
		if m[1] != wantYear {
			continue
		}
		if m[2] > bestSuffix {
			best, bestSuffix = m[0], m[2]
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w: %d", domain.ErrNoDatasetForYear, year)
	}
	return best, nil
}

// listingBody returns the cached directory listing, refetching when the
// cache is empty or older than the TTL. The mutex serializes refreshes, so
// concurrent lookups share one fetch.
func (c *Catalog) listingBody(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listing != "" && c.clock.Since(c.fetchedAt) < c.ttl {
		c.metrics.ListingCacheHits.Inc()
		return c.listing, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("create listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch directory listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch directory listing: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read directory listing: %w", err)
	}

	c.listing = string(body)
	c.fetchedAt = c.clock.Now()
	c.metrics.ListingFetches.Inc()
	c.logger.Debug("directory listing refreshed", "bytes", len(body))

	return c.listing, nil
}
