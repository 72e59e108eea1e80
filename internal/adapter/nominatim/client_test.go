package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

const testUserAgent = "storm-history-api-test/0.1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testUserAgent, 5*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func suffolkResponse() []searchResult {
	return []searchResult{
		{
			DisplayName: "Suffolk County, New York, United States",
			Lat:         "40.8770",
			Lon:         "-72.8735",
			Address: addressDetail{
				County: "Suffolk County",
				State:  "New York",
			},
		},
	}
}

func TestClient_Geocode_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Suffolk County, NY", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		require.NoError(t, json.NewEncoder(w).Encode(suffolkResponse()))
	})

	target, err := c.Geocode(context.Background(), "Suffolk County, NY")
	require.NoError(t, err)

	assert.Equal(t, "Suffolk County, New York, United States", target.DisplayName)
	assert.Equal(t, 40.8770, target.Lat)
	assert.Equal(t, -72.8735, target.Lon)
	assert.Equal(t, "Suffolk", target.County, "County suffix stripped")
	assert.Equal(t, "New York", target.State)
}

func TestClient_Geocode_FirstResultUsed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		results := append(suffolkResponse(), searchResult{
			DisplayName: "Suffolk, Virginia, United States",
			Lat:         "36.7282",
			Lon:         "-76.5836",
		})
		require.NoError(t, json.NewEncoder(w).Encode(results))
	})

	target, err := c.Geocode(context.Background(), "Suffolk")
	require.NoError(t, err)
	assert.Equal(t, "Suffolk County, New York, United States", target.DisplayName)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]searchResult{}))
	})

	_, err := c.Geocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestClient_Geocode_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := c.Geocode(context.Background(), "Suffolk County, NY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.NotErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestClient_Geocode_BadCoordinates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		results := suffolkResponse()
		results[0].Lat = "not-a-number"
		require.NoError(t, json.NewEncoder(w).Encode(results))
	})

	_, err := c.Geocode(context.Background(), "Suffolk County, NY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestClient_Geocode_MissingAddressDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		results := suffolkResponse()
		results[0].Address = addressDetail{}
		require.NoError(t, json.NewEncoder(w).Encode(results))
	})

	target, err := c.Geocode(context.Background(), "somewhere vague")
	require.NoError(t, err)
	assert.Empty(t, target.County)
	assert.Empty(t, target.State)
}

func TestStripCountySuffix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"county", "Suffolk County", "Suffolk"},
		{"parish", "Washington Parish", "Washington"},
		{"borough", "Matanuska-Susitna Borough", "Matanuska-Susitna"},
		{"census area", "Yukon-Koyukuk Census Area", "Yukon-Koyukuk"},
		{"no suffix", "Suffolk", "Suffolk"},
		{"suffix in middle kept", "County Road District", "County Road District"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCountySuffix(tt.input))
		})
	}
}
