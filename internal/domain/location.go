package domain

import "time"

// ResolvedLocation is a leg endpoint's display name and coordinates,
// computed fresh at read time. Code is set only for flight endpoints.
type ResolvedLocation struct {
	Code string  `json:"code,omitempty"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Airport is one record of the airport directory: a 3-letter code mapped to
// a display name and coordinates. The directory table is bulk-loaded from a
// third-party dataset and is the source of truth; all in-process caching
// over it is rebuildable.
type Airport struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// AirportSuggestion is one ranked autocomplete result. City is derived from
// Name (the text before the first comma) and not stored.
type AirportSuggestion struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// GeocodeEntry is one row of the persistent geocode cache. Query is the
// lowercased, trimmed form of the address; a query is written at most once
// and never updated, so CachedAt records when the coordinates were fetched.
type GeocodeEntry struct {
	Query    string
	Name     string
	Lat      float64
	Lng      float64
	CachedAt time.Time
}
