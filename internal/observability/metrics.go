package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// wind-history lookup pipeline.
type Metrics struct {
	// Dataset acquisition metrics.
	ListingFetches   prometheus.Counter
	ListingCacheHits prometheus.Counter
	DatasetDownloads prometheus.Counter
	DatasetCacheHits prometheus.Counter

	// Per-lookup pipeline metrics.
	RowsScanned    prometheus.Counter
	EventsMatched  prometheus.Counter
	YearErrors     prometheus.Counter
	LookupDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,not_found,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ListingFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "listing_fetches_total",
			Help:      "Directory listing fetches from the NCEI server.",
		}),
		ListingCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "listing_cache_hits_total",
			Help:      "Directory listing requests served from the in-memory TTL cache.",
		}),
		DatasetDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "dataset_downloads_total",
			Help:      "Dataset files downloaded into the on-disk cache.",
		}),
		DatasetCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "dataset_cache_hits_total",
			Help:      "Dataset requests served from the on-disk cache.",
		}),
		RowsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "rows_scanned_total",
			Help:      "CSV rows streamed out of dataset files.",
		}),
		EventsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "events_matched_total",
			Help:      "Rows that passed the wind-event filter.",
		}),
		YearErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "year_errors_total",
			Help:      "Per-year acquisition or parse failures degraded to zero events.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_history",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a complete address lookup across the lookback window.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_history",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.ListingFetches,
		m.ListingCacheHits,
		m.DatasetDownloads,
		m.DatasetCacheHits,
		m.RowsScanned,
		m.EventsMatched,
		m.YearErrors,
		m.LookupDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ListingFetches:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "listing_fetches_total"}),
		ListingCacheHits: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "listing_cache_hits_total"}),
		DatasetDownloads: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "dataset_downloads_total"}),
		DatasetCacheHits: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "dataset_cache_hits_total"}),
		RowsScanned:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "rows_scanned_total"}),
		EventsMatched:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "events_matched_total"}),
		YearErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_history", Name: "year_errors_total"}),
		LookupDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_history", Name: "lookup_duration_seconds"}),
		GeocodeRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_history", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_history", Name: "geocode_cache_total"}, []string{"result"}),
	}
}
