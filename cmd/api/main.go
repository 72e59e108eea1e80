// Command api serves the wind-storm history lookup API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-history-api/internal/adapter/httpapi"
	"github.com/couchcryptid/storm-history-api/internal/adapter/ncei"
	"github.com/couchcryptid/storm-history-api/internal/adapter/nominatim"
	"github.com/couchcryptid/storm-history-api/internal/config"
	"github.com/couchcryptid/storm-history-api/internal/observability"
	"github.com/couchcryptid/storm-history-api/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, logger, metrics),
		cfg.NominatimCacheSize,
		metrics,
	)

	catalog := ncei.NewCatalog(cfg.NCEIBaseURL, cfg.NCEITimeout, cfg.ListingTTL, clock, logger, metrics)
	store := ncei.NewStore(cfg.NCEIBaseURL, cfg.CacheDir, cfg.NCEITimeout, logger, metrics)
	scanner := ncei.NewScanner(metrics)

	service := pipeline.NewService(geocoder, catalog, store, scanner, clock, logger, metrics, cfg.LookbackYears)

	srv := httpapi.NewServer(cfg.HTTPAddr, service, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("storm history api started",
		"addr", cfg.HTTPAddr,
		"cache_dir", cfg.CacheDir,
		"lookback_years", cfg.LookbackYears,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
