// Package httpapi exposes the wind-history lookup over HTTP, plus health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-history-api/internal/domain"
)

// HistoryLookup answers wind-history queries.
type HistoryLookup interface {
	Lookup(ctx context.Context, address string, radiusMiles float64) (domain.Report, error)
}

// Server exposes the lookup API with health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	lookup     HistoryLookup
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, lookup HistoryLookup, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Lookups for uncached years download multi-megabyte files
			// sequentially; the write timeout has to cover the worst case.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		lookup: lookup,
		logger: logger,
	}

	mux.HandleFunc("GET /api/v1/wind-history", s.handleWindHistory)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleWindHistory(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	radius := parseRadius(r.URL.Query().Get("radius"))

	report, err := s.lookup.Lookup(r.Context(), address, radius)
	if err != nil {
		if errors.Is(err, domain.ErrAddressResolution) {
			writeError(w, http.StatusNotFound, "address could not be resolved")
			return
		}
		s.logger.Error("wind history lookup failed", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// parseRadius interprets the optional radius parameter. Anything missing,
// unparsable, or non-positive means "no radius filter".
func parseRadius(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || radius < 0 {
		return 0
	}
	return radius
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
