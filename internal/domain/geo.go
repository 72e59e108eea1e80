package domain

import (
	"math"
	"strings"
	"unicode"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distances.
const earthRadiusMiles = 3958.8

// NormalizeAdminName lowercases a state or county name and collapses every
// run of non-alphanumeric characters to a single space, so "NEW YORK",
// "New-York" and "new york." all compare equal.
func NormalizeAdminName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// NormalizeCounty applies NormalizeAdminName and strips a trailing "county"
// word, so "Suffolk County" and "SUFFOLK" compare equal.
func NormalizeCounty(s string) string {
	n := NormalizeAdminName(s)
	n = strings.TrimSuffix(n, " county")
	return strings.TrimSpace(n)
}

// CountyMatches reports whether a geocoded county name and a dataset
// county/zone name refer to the same place.
//
// Matching is deliberately approximate: NCEI zone-based rows use forecast
// zone names ("SUFFOLK CO", "SOUTHERN ERIE") that rarely equal the county
// string a geocoder returns. After normalization the names match when they
// are equal, when either contains the other, or when their first tokens are
// equal. This tolerates suffix and qualifier mismatches at the cost of the
// occasional false positive; state filtering upstream keeps that contained.
func CountyMatches(target, record string) bool {
	t := NormalizeCounty(target)
	r := NormalizeCounty(record)
	if t == "" || r == "" {
		return false
	}
	if t == r {
		return true
	}
	if strings.Contains(t, r) || strings.Contains(r, t) {
		return true
	}
	return firstToken(t) == firstToken(r)
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// HaversineMiles computes the great-circle distance in miles between two
// WGS-84 coordinate pairs.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
