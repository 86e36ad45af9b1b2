// Package rowstore provides access to the row-oriented persistent store.
// Every logical table ("sheet") is an ordered list of string rows whose
// first row is a fixed header. Positions are 1-based and shift on delete,
// exactly like a spreadsheet range. No business logic lives here — only
// row access and type-free cell handling.
package rowstore

import (
	"context"
	"fmt"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// Sheet names of the four logical tables.
const (
	SheetTrips    = "Trips"
	SheetLegs     = "Legs"
	SheetAirports = "Airports"
	SheetGeocode  = "GeocodeCache"
)

// Column layouts. Columns are 1-based to match UpdateCell and FindExactMatch.
const (
	TripColID = iota + 1
	TripColName
	TripColStartDate
	TripColEndDate
)

const (
	LegColTripID = iota + 1
	LegColOrder
	LegColOrigin
	LegColDestination
	LegColDepartureDate
	LegColArrivalDate
	LegColMode
)

const (
	AirportColCode = iota + 1
	AirportColName
	AirportColLat
	AirportColLng
)

const (
	GeocodeColQuery = iota + 1
	GeocodeColName
	GeocodeColLat
	GeocodeColLng
	GeocodeColCachedAt
)

// Headers maps each sheet to its expected header row, seeded at bootstrap.
var Headers = map[string][]string{
	SheetTrips:    {"id", "name", "start_date", "end_date"},
	SheetLegs:     {"trip_id", "leg_order", "origin", "destination", "departure_date", "arrival_date", "mode"},
	SheetAirports: {"code", "name", "lat", "lng"},
	SheetGeocode:  {"query", "name", "lat", "lng", "cached_at"},
}

// Store is the minimal row-store surface the rest of the application
// depends on. Implemented by the Postgres adapter in production and by
// Memory in unit tests.
type Store interface {
	// GetRows returns every row of the sheet in order, header included as
	// row 1. A sheet with only its header yields a one-element result.
	GetRows(ctx context.Context, sheet string) ([][]string, error)

	// GetRow returns the row at the 1-based position pos.
	// Returns domain.ErrNotFound when pos is out of range.
	GetRow(ctx context.Context, sheet string, pos int) ([]string, error)

	// AppendRow adds a row after the current last row of the sheet.
	AppendRow(ctx context.Context, sheet string, cells []string) error

	// UpdateCell overwrites a single cell. pos and col are 1-based.
	UpdateCell(ctx context.Context, sheet string, pos, col int, value string) error

	// DeleteRow removes the row at pos; every later row shifts up by one.
	// Callers deleting multiple rows must therefore delete highest-first.
	DeleteRow(ctx context.Context, sheet string, pos int) error

	// FindExactMatch returns the position of the first data row whose cell
	// in col equals value exactly (case-sensitive). The header row is never
	// matched. Returns domain.ErrNotFound on miss.
	FindExactMatch(ctx context.Context, sheet string, value string, col int) (int, error)
}

// CheckSheets verifies that every sheet has its header row in place.
// A missing or wrong-width header means the store was never bootstrapped;
// the caller gets domain.ErrStoreUnavailable and should refuse to serve.
func CheckSheets(ctx context.Context, s Store) error {
	for sheet, header := range Headers {
		row, err := s.GetRow(ctx, sheet, 1)
		if err != nil {
			return fmt.Errorf("rowstore.CheckSheets: sheet %s: %w", sheet, domain.ErrStoreUnavailable)
		}
		if len(row) != len(header) {
			return fmt.Errorf("rowstore.CheckSheets: sheet %s has %d header columns, want %d: %w",
				sheet, len(row), len(header), domain.ErrStoreUnavailable)
		}
	}
	return nil
}
