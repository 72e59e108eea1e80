// Package nominatim implements domain.Geocoder against the OSM Nominatim
// search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// countySuffixes are administrative suffixes Nominatim includes in county
// names that the dataset's CZ_NAME never carries. Stripped before the county
// enters the matching pipeline.
var countySuffixes = []string{" County", " Parish", " Borough", " Census Area"}

// Client implements domain.Geocoder using the Nominatim search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. userAgent identifies this service to
// the Nominatim operators, as their usage policy requires.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Geocode resolves a free-text address to a GeoTarget using the first search
// result. Returns domain.ErrAddressNotFound when Nominatim has no match.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeoTarget, error) {
	params := url.Values{
		"q":              {address},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.GeoTarget{}, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoTarget{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return domain.GeoTarget{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoTarget{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		return domain.GeoTarget{}, fmt.Errorf("%w: %q", domain.ErrAddressNotFound, address)
	}

	target, err := results[0].toGeoTarget()
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoTarget{}, err
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	c.logger.Debug("address geocoded",
		"display_name", target.DisplayName,
		"county", target.County,
		"state", target.State,
	)
	return target, nil
}

// Nominatim API response types.

type searchResult struct {
	DisplayName string        `json:"display_name"`
	Lat         string        `json:"lat"`
	Lon         string        `json:"lon"`
	Address     addressDetail `json:"address"`
}

type addressDetail struct {
	County string `json:"county"`
	State  string `json:"state"`
}

func (r searchResult) toGeoTarget() (domain.GeoTarget, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return domain.GeoTarget{}, fmt.Errorf("parse latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return domain.GeoTarget{}, fmt.Errorf("parse longitude %q: %w", r.Lon, err)
	}

	return domain.GeoTarget{
		DisplayName: r.DisplayName,
		Lat:         lat,
		Lon:         lon,
		County:      stripCountySuffix(r.Address.County),
		State:       r.Address.State,
	}, nil
}

// stripCountySuffix removes a trailing administrative suffix from a raw
// county name, e.g. "Suffolk County" -> "Suffolk".
func stripCountySuffix(county string) string {
	county = strings.TrimSpace(county)
	for _, suffix := range countySuffixes {
		if trimmed, ok := strings.CutSuffix(county, suffix); ok {
			return strings.TrimSpace(trimmed)
		}
	}
	return county
}
