package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCutoff = time.Date(2015, 8, 31, 0, 0, 0, 0, time.UTC)
	testTarget = GeoTarget{
		DisplayName: "Suffolk County, New York, United States",
		Lat:         40.8,
		Lon:         -73.0,
		County:      "Suffolk",
		State:       "New York",
	}
)

// matchingRow returns a row that passes every predicate; tests mutate single
// fields to exercise one exclusion reason at a time.
func matchingRow() RawRow {
	return RawRow{
		"EVENT_TYPE":      "Thunderstorm Wind",
		"STATE":           "NEW YORK",
		"CZ_NAME":         "SUFFOLK",
		"BEGIN_DATE_TIME": "04/28/2019 15:30:00",
		"MAGNITUDE":       "52",
		"MAGNITUDE_TYPE":  "EG",
		"BEGIN_LAT":       "40.85",
		"BEGIN_LON":       "-72.95",
	}
}

func TestMatchRow_FullyMatchingRow(t *testing.T) {
	event, ok := MatchRow(matchingRow(), testTarget, testCutoff)

	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 4, 28, 0, 0, 0, 0, time.UTC), event.BeginDate)
	assert.Equal(t, 60, event.WindSpeedMph) // round(52 * 1.15078)
	assert.Equal(t, "Thunderstorm Wind", event.EventType)
	require.NotNil(t, event.Lat)
	require.NotNil(t, event.Lon)
	assert.Equal(t, 40.85, *event.Lat)
	assert.Equal(t, -72.95, *event.Lon)
	assert.Nil(t, event.DistanceMiles)
}

func TestMatchRow_ExclusionReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(RawRow)
	}{
		{"event type not in allow-list", func(r RawRow) { r["EVENT_TYPE"] = "Hail" }},
		{"event type empty", func(r RawRow) { r["EVENT_TYPE"] = "" }},
		{"wrong state", func(r RawRow) { r["STATE"] = "NEW JERSEY" }},
		{"unrelated county", func(r RawRow) { r["CZ_NAME"] = "WESTCHESTER" }},
		{"date before cutoff", func(r RawRow) { r["BEGIN_DATE_TIME"] = "04/28/2014 15:30:00" }},
		{"unparsable date", func(r RawRow) { r["BEGIN_DATE_TIME"] = "sometime in april" }},
		{"missing date", func(r RawRow) { delete(r, "BEGIN_DATE_TIME") }},
		{"zero magnitude", func(r RawRow) { r["MAGNITUDE"] = "0" }},
		{"negative magnitude", func(r RawRow) { r["MAGNITUDE"] = "-5" }},
		{"unparsable magnitude", func(r RawRow) { r["MAGNITUDE"] = "UNK" }},
		{"missing magnitude", func(r RawRow) { delete(r, "MAGNITUDE") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := matchingRow()
			tt.mutate(row)
			_, ok := MatchRow(row, testTarget, testCutoff)
			assert.False(t, ok)
		})
	}
}

func TestMatchRow_AllowList(t *testing.T) {
	allowed := []string{
		"High Wind",
		"Thunderstorm Wind",
		"Marine Thunderstorm Wind",
		"Marine High Wind",
		"Strong Wind",
		"Tropical Storm",
		"Hurricane",
		"Hurricane (Typhoon)",
	}

	for _, eventType := range allowed {
		t.Run(eventType, func(t *testing.T) {
			row := matchingRow()
			row["EVENT_TYPE"] = "  " + eventType + "  " // trimmed before comparison
			event, ok := MatchRow(row, testTarget, testCutoff)
			require.True(t, ok)
			assert.Equal(t, eventType, event.EventType)
		})
	}
}

func TestMatchRow_MissingCoordinatesDoesNotExclude(t *testing.T) {
	row := matchingRow()
	row["BEGIN_LAT"] = ""
	row["BEGIN_LON"] = ""

	event, ok := MatchRow(row, testTarget, testCutoff)

	require.True(t, ok)
	assert.Nil(t, event.Lat)
	assert.Nil(t, event.Lon)
}

func TestMatchRow_OneCoordinateMissing(t *testing.T) {
	row := matchingRow()
	row["BEGIN_LON"] = ""

	event, ok := MatchRow(row, testTarget, testCutoff)

	require.True(t, ok)
	assert.Nil(t, event.Lat, "a lone latitude is useless for distance, drop both")
	assert.Nil(t, event.Lon)
}

func TestMatchRow_TargetWithoutCountySkipsCountyFilter(t *testing.T) {
	target := testTarget
	target.County = ""
	row := matchingRow()
	row["CZ_NAME"] = "WESTCHESTER"

	_, ok := MatchRow(row, target, testCutoff)
	assert.True(t, ok)
}

func TestMatchRow_TargetWithoutStateOrCounty(t *testing.T) {
	target := testTarget
	target.County = ""
	target.State = ""
	row := matchingRow()
	row["STATE"] = "TEXAS"
	row["CZ_NAME"] = "TRAVIS"

	_, ok := MatchRow(row, target, testCutoff)
	assert.True(t, ok)
}

func TestMatchRow_CutoffBoundaryIsInclusive(t *testing.T) {
	row := matchingRow()
	row["BEGIN_DATE_TIME"] = "08/31/2015 00:00:00"

	_, ok := MatchRow(row, testTarget, testCutoff)
	assert.True(t, ok)
}

func TestParseBeginDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{"slash format with time", "04/28/2015 15:30:00", time.Date(2015, 4, 28, 0, 0, 0, 0, time.UTC), true},
		{"slash format date only", "12/01/2020", time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"dash format two-digit year", "28-APR-15 15:30:00", time.Date(2015, 4, 28, 0, 0, 0, 0, time.UTC), true},
		{"dash format four-digit year", "28-APR-2015 15:30:00", time.Date(2015, 4, 28, 0, 0, 0, 0, time.UTC), true},
		{"dash format single-digit day", "3-JAN-18 00:05:00", time.Date(2018, 1, 3, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"month name invalid", "28-APL-15", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBeginDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestNormalizeWindSpeed(t *testing.T) {
	tests := []struct {
		name          string
		magnitude     string
		magnitudeType string
		expected      int
		ok            bool
	}{
		{"estimated gust converts from knots", "100", "EG", 115, true},
		{"measured gust converts from knots", "100", "MG", 115, true},
		{"sustained speed stays mph", "100", "ES", 100, true},
		{"empty type stays mph", "100", "", 100, true},
		{"rounds to nearest whole", "50.4", "", 50, true},
		{"gust rounds after conversion", "52", "EG", 60, true},
		{"zero rejected", "0", "EG", 0, false},
		{"negative rejected", "-10", "", 0, false},
		{"non-numeric rejected", "UNK", "EG", 0, false},
		{"empty rejected", "", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeWindSpeed(tt.magnitude, tt.magnitudeType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
