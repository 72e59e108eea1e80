package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// knotsToMph converts knots to statute miles per hour.
const knotsToMph = 1.15078

// windEventTypes is the fixed allow-list of EVENT_TYPE values that count as
// wind-storm events.
var windEventTypes = map[string]struct{}{
	"High Wind":                {},
	"Thunderstorm Wind":        {},
	"Marine Thunderstorm Wind": {},
	"Marine High Wind":         {},
	"Strong Wind":              {},
	"Tropical Storm":           {},
	"Hurricane":                {},
	"Hurricane (Typhoon)":      {},
}

// gustKnotFlags are the MAGNITUDE_TYPE values whose magnitude is recorded in
// knots rather than mph. EG = estimated gust, MG = measured gust.
var gustKnotFlags = map[string]struct{}{
	"EG": {},
	"MG": {},
}

// MatchRow decides whether one CSV row is a wind event near the target and,
// if so, normalizes it into a StormEvent. It is a pure function of
// (row, target, cutoff); predicates short-circuit in order:
//
//  1. EVENT_TYPE must be in the wind allow-list (exact match after trimming).
//  2. STATE must equal the target state, when the target has one.
//  3. CZ_NAME must fuzzy-match the target county, when the target has one.
//  4. BEGIN_DATE_TIME must parse and be on or after cutoff.
//  5. MAGNITUDE must normalize to a positive whole mph value.
//
// Coordinates are extracted when finite but their absence never excludes a
// row; only a later radius filter cares.
func MatchRow(row RawRow, target GeoTarget, cutoff time.Time) (StormEvent, bool) {
	eventType := strings.TrimSpace(row["EVENT_TYPE"])
	if _, ok := windEventTypes[eventType]; !ok {
		return StormEvent{}, false
	}

	if target.State != "" {
		if NormalizeAdminName(row["STATE"]) != NormalizeAdminName(target.State) {
			return StormEvent{}, false
		}
	}

	if target.County != "" {
		if !CountyMatches(target.County, row["CZ_NAME"]) {
			return StormEvent{}, false
		}
	}

	beginDate, ok := ParseBeginDate(row["BEGIN_DATE_TIME"])
	if !ok || beginDate.Before(cutoff) {
		return StormEvent{}, false
	}

	mph, ok := normalizeWindSpeed(row["MAGNITUDE"], row["MAGNITUDE_TYPE"])
	if !ok {
		return StormEvent{}, false
	}

	event := StormEvent{
		BeginDate:    beginDate,
		WindSpeedMph: mph,
		EventType:    eventType,
	}
	if lat, lon, ok := parseCoordinates(row["BEGIN_LAT"], row["BEGIN_LON"]); ok {
		event.Lat = &lat
		event.Lon = &lon
	}
	return event, true
}

// beginDateLayouts covers the two vintages of BEGIN_DATE_TIME seen in NCEI
// exports: "04/28/2015" and "28-APR-15" (also with a 4-digit year). The
// 4-digit dash layout must be tried before the 2-digit one.
var beginDateLayouts = []string{
	"01/02/2006",
	"2-Jan-2006",
	"2-Jan-06",
}

// ParseBeginDate extracts the calendar date from a BEGIN_DATE_TIME value,
// ignoring any trailing time-of-day. The result is midnight UTC.
func ParseBeginDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	for _, layout := range beginDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// normalizeWindSpeed parses the magnitude and converts it to whole mph.
// EG/MG magnitudes are gusts in knots and are converted; everything else is
// taken as mph. Non-finite and non-positive results are rejected.
func normalizeWindSpeed(magnitude, magnitudeType string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(magnitude), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	if _, gust := gustKnotFlags[strings.TrimSpace(magnitudeType)]; gust {
		v *= knotsToMph
	}

	mph := int(math.Round(v))
	if mph <= 0 {
		return 0, false
	}
	return mph, true
}

// parseCoordinates returns both coordinates when both parse to finite values.
func parseCoordinates(latStr, lonStr string) (lat, lon float64, ok bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, false
	}
	return lat, lon, true
}
