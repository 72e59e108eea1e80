// Package pipeline orchestrates the per-year resolve-fetch-scan-filter chain
// and shapes the final wind-history report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// ErrEmptyAddress is returned when a lookup is requested without an address.
var ErrEmptyAddress = errors.New("address is required")

// Catalog resolves the authoritative dataset filename for a year.
type Catalog interface {
	ResolveFilename(ctx context.Context, year int) (string, error)
}

// Store guarantees a local copy of a dataset file and returns its path.
type Store interface {
	Ensure(ctx context.Context, filename string) (string, error)
}

// RowSource streams parsed CSV rows out of a local dataset file.
type RowSource interface {
	Scan(ctx context.Context, path string, fn func(domain.RawRow) error) error
}

// Service answers wind-history lookups. Years in the lookback window are
// processed sequentially; one dataset file is held open at a time.
type Service struct {
	geocoder      domain.Geocoder
	catalog       Catalog
	store         Store
	rows          RowSource
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
	lookbackYears int
}

// NewService creates a Service with the given collaborators.
func NewService(geocoder domain.Geocoder, catalog Catalog, store Store, rows RowSource, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, lookbackYears int) *Service {
	return &Service{
		geocoder:      geocoder,
		catalog:       catalog,
		store:         store,
		rows:          rows,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
		lookbackYears: lookbackYears,
	}
}

// Lookup geocodes the address and returns its wind-storm history over the
// lookback window, sorted descending by date and deduplicated. A positive
// radiusMiles additionally drops events without coordinates or farther than
// the radius from the geocoded point, attaching the computed distance.
//
// Geocoding failure is fatal for the request and is reported as
// domain.ErrAddressResolution. A failure acquiring or parsing
// any single year's dataset is logged and degrades to zero events for that
// year; later years still run.
func (s *Service) Lookup(ctx context.Context, address string, radiusMiles float64) (domain.Report, error) {
	if address == "" {
		return domain.Report{}, ErrEmptyAddress
	}

	start := s.clock.Now()
	defer func() {
		s.metrics.LookupDuration.Observe(s.clock.Since(start).Seconds())
	}()

	target, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.Report{}, fmt.Errorf("%w: %w", domain.ErrAddressResolution, err)
	}

	now := s.clock.Now().UTC()
	c := now.AddDate(-s.lookbackYears, 0, 0)
	cutoff := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)

	var events []domain.StormEvent
	for year := cutoff.Year(); year <= now.Year(); year++ {
		if err := ctx.Err(); err != nil {
			return domain.Report{}, err
		}

		yearEvents, err := s.collectYear(ctx, year, target, cutoff)
		if err != nil {
			s.logger.Warn("year processing failed, treating as zero events",
				"year", year,
				"address", target.DisplayName,
				"error", err,
			)
			s.metrics.YearErrors.Inc()
			continue
		}
		events = append(events, yearEvents...)
	}

	slices.SortStableFunc(events, func(a, b domain.StormEvent) int {
		return b.BeginDate.Compare(a.BeginDate)
	})

	if radiusMiles > 0 {
		events = filterByRadius(events, target, radiusMiles)
	}
	events = dedupe(events)

	records := make([]domain.EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, e.Record())
	}

	s.logger.Info("lookup complete",
		"address", target.DisplayName,
		"radius_miles", radiusMiles,
		"events", len(records),
	)

	return domain.Report{
		Address:     target.DisplayName,
		County:      target.County,
		State:       target.State,
		RadiusMiles: radiusMiles,
		Events:      records,
	}, nil
}

// collectYear runs the resolve-fetch-scan-filter chain for one year. A year
// with no published dataset file yields zero events without an error.
func (s *Service) collectYear(ctx context.Context, year int, target domain.GeoTarget, cutoff time.Time) ([]domain.StormEvent, error) {
	filename, err := s.catalog.ResolveFilename(ctx, year)
	if errors.Is(err, domain.ErrNoDatasetForYear) {
		s.logger.Debug("no dataset published for year", "year", year)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve dataset for %d: %w", year, err)
	}

	path, err := s.store.Ensure(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset for %d: %w", year, err)
	}

	var events []domain.StormEvent
	err = s.rows.Scan(ctx, path, func(row domain.RawRow) error {
		if event, ok := domain.MatchRow(row, target, cutoff); ok {
			s.metrics.EventsMatched.Inc()
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dataset for %d: %w", year, err)
	}
	return events, nil
}

// filterByRadius keeps coordinate-bearing events within radiusMiles of the
// target and attaches the distance, rounded to one decimal.
func filterByRadius(events []domain.StormEvent, target domain.GeoTarget, radiusMiles float64) []domain.StormEvent {
	kept := make([]domain.StormEvent, 0, len(events))
	for _, e := range events {
		if e.Lat == nil || e.Lon == nil {
			continue
		}
		d := domain.HaversineMiles(target.Lat, target.Lon, *e.Lat, *e.Lon)
		if d > radiusMiles {
			continue
		}
		rounded := math.Round(d*10) / 10
		e.DistanceMiles = &rounded
		kept = append(kept, e)
	}
	return kept
}

// dedupe collapses events sharing a (formatted date, wind speed) pair,
// keeping the first occurrence in the current order. Event type and location
// are deliberately not part of the key.
func dedupe(events []domain.StormEvent) []domain.StormEvent {
	seen := make(map[string]struct{}, len(events))
	kept := make([]domain.StormEvent, 0, len(events))
	for _, e := range events {
		key := e.BeginDate.Format(domain.DateLayout) + "|" + strconv.Itoa(e.WindSpeedMph)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, e)
	}
	return kept
}
