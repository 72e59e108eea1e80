package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NCEI Storm Events dataset configuration.
	NCEIBaseURL   string
	NCEITimeout   time.Duration
	CacheDir      string
	ListingTTL    time.Duration
	LookbackYears int

	// Nominatim geocoding configuration.
	NominatimBaseURL   string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	NominatimCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nceiTimeout, err := parsePositiveDuration("NCEI_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	listingTTL, err := parsePositiveDuration("LISTING_TTL", "1h")
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := parsePositiveDuration("NOMINATIM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NCEIBaseURL:   sharedcfg.EnvOrDefault("NCEI_BASE_URL", "https://www.ncei.noaa.gov/pub/data/swdi/stormevents/csvfiles"),
		NCEITimeout:   nceiTimeout,
		CacheDir:      sharedcfg.EnvOrDefault("CACHE_DIR", "data/stormevents"),
		ListingTTL:    listingTTL,
		LookbackYears: parsePositiveInt("LOOKBACK_YEARS", 10),

		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "storm-history-api/1.0 (ops@couchcryptid.dev)"),
		NominatimTimeout:   nominatimTimeout,
		NominatimCacheSize: parsePositiveInt("NOMINATIM_CACHE_SIZE", 1000),
	}

	if cfg.NCEIBaseURL == "" {
		return nil, errors.New("NCEI_BASE_URL is required")
	}
	if cfg.CacheDir == "" {
		return nil, errors.New("CACHE_DIR is required")
	}
	if cfg.NominatimBaseURL == "" {
		return nil, errors.New("NOMINATIM_BASE_URL is required")
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
