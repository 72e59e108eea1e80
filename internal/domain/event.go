package domain

import "time"

// DateLayout is the output (and deduplication) date format.
const DateLayout = "01/02/2006"

// RawRow is one CSV row keyed by header column name. It is ephemeral: it
// exists only while a single dataset file is being streamed.
type RawRow map[string]string

// GeoTarget is a geocoded street address. County and State may be empty when
// the geocoder could not determine them; downstream matching degrades to
// state-only or no administrative filtering.
type GeoTarget struct {
	DisplayName string
	Lat         float64
	Lon         float64
	County      string
	State       string
}

// StormEvent is a matched, normalized wind event. Lat/Lon are nil when the
// source row had no finite coordinates. DistanceMiles is populated only when
// a radius filter was applied.
type StormEvent struct {
	BeginDate     time.Time // UTC, midnight
	WindSpeedMph  int
	EventType     string
	Lat           *float64
	Lon           *float64
	DistanceMiles *float64
}

// Report is the final response shape for one lookup. RadiusMiles echoes the
// requested radius and is always present; zero means no radius filter ran.
type Report struct {
	Address     string        `json:"address"`
	County      string        `json:"county,omitempty"`
	State       string        `json:"state,omitempty"`
	RadiusMiles float64       `json:"radiusMiles"`
	Events      []EventRecord `json:"events"`
}

// EventRecord is one serialized event. DistanceMiles is always present in the
// JSON body and is null unless a radius filter was requested.
type EventRecord struct {
	Date          string   `json:"date"`
	WindSpeedMph  int      `json:"windSpeedMph"`
	EventType     string   `json:"eventType"`
	DistanceMiles *float64 `json:"distanceMiles"`
}

// Record converts a StormEvent to its output form.
func (e StormEvent) Record() EventRecord {
	return EventRecord{
		Date:          e.BeginDate.Format(DateLayout),
		WindSpeedMph:  e.WindSpeedMph,
		EventType:     e.EventType,
		DistanceMiles: e.DistanceMiles,
	}
}
