// Package directory implements the airport directory: a tiered read-through
// lookup from a 3-letter code to coordinates, backed by the bulk-loaded
// Airports sheet. The first tier is an in-process TTL cache which also holds
// explicit not-found markers, so repeated lookups of invalid codes do not
// repeatedly scan the backing sheet.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
)

// cacheTTL is how long a lookup result (positive or negative) stays in the
// ephemeral tier. Stale negative entries self-expire within this window
// even if a bulk load forgets to invalidate.
const cacheTTL = 6 * time.Hour

// cacheSize bounds the LRU tier. The full IATA code space is under 20k
// entries, so in practice nothing is evicted before it expires.
const cacheSize = 20480

// notFound is the negative-cache marker, distinct from "never looked up".
type notFound struct{}

// Directory performs code lookups over the Airports sheet.
type Directory struct {
	store rowstore.Store
	cache gcache.Cache
}

// New constructs a Directory over the given store.
func New(store rowstore.Store) *Directory {
	return &Directory{
		store: store,
		cache: gcache.New(cacheSize).LRU().Expiration(cacheTTL).Build(),
	}
}

func cacheKey(code string) string { return "airport_" + code }

// Lookup resolves a 3-letter code to its directory record.
// The code is uppercased and trimmed first; empty input is a miss without
// any cache or sheet access. Returns domain.ErrNotFound on miss.
func (d *Directory) Lookup(ctx context.Context, code string) (domain.Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Airport{}, fmt.Errorf("directory.Lookup: empty code: %w", domain.ErrNotFound)
	}

	if v, err := d.cache.Get(cacheKey(code)); err == nil {
		if _, miss := v.(notFound); miss {
			return domain.Airport{}, fmt.Errorf("directory.Lookup: %s: %w", code, domain.ErrNotFound)
		}
		return v.(domain.Airport), nil
	}

	pos, err := d.store.FindExactMatch(ctx, rowstore.SheetAirports, code, rowstore.AirportColCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Cache the miss so the next lookup skips the sheet scan.
			_ = d.cache.Set(cacheKey(code), notFound{})
			return domain.Airport{}, fmt.Errorf("directory.Lookup: %s: %w", code, domain.ErrNotFound)
		}
		return domain.Airport{}, fmt.Errorf("directory.Lookup: %w", err)
	}

	row, err := d.store.GetRow(ctx, rowstore.SheetAirports, pos)
	if err != nil {
		return domain.Airport{}, fmt.Errorf("directory.Lookup: %w", err)
	}
	a, err := parseAirportRow(row)
	if err != nil {
		return domain.Airport{}, fmt.Errorf("directory.Lookup: %w", err)
	}

	_ = d.cache.Set(cacheKey(code), a)
	return a, nil
}

// Exists reports whether the code resolves in the directory.
func (d *Directory) Exists(ctx context.Context, code string) bool {
	_, err := d.Lookup(ctx, code)
	return err == nil
}

// Invalidate drops the whole ephemeral tier. Called after a bulk load so
// negative entries for codes that just became valid do not linger for the
// rest of their TTL.
func (d *Directory) Invalidate() {
	d.cache.Purge()
}

// ReplaceAll rewrites the directory sheet below its header with the given
// records, then invalidates the ephemeral tier. This is the bulk-load path;
// it is not serialized with trip mutations because the directory is a
// rebuildable index, not trip data.
func (d *Directory) ReplaceAll(ctx context.Context, records []domain.Airport) error {
	rows, err := d.store.GetRows(ctx, rowstore.SheetAirports)
	if err != nil {
		return fmt.Errorf("directory.ReplaceAll: %w", err)
	}
	// Delete highest-first so surviving positions do not shift underneath us.
	for pos := len(rows); pos > 1; pos-- {
		if err := d.store.DeleteRow(ctx, rowstore.SheetAirports, pos); err != nil {
			return fmt.Errorf("directory.ReplaceAll: clear row %d: %w", pos, err)
		}
	}
	for _, a := range records {
		cells := []string{
			strings.ToUpper(strings.TrimSpace(a.Code)),
			a.Name,
			strconv.FormatFloat(a.Lat, 'f', -1, 64),
			strconv.FormatFloat(a.Lng, 'f', -1, 64),
		}
		if err := d.store.AppendRow(ctx, rowstore.SheetAirports, cells); err != nil {
			return fmt.Errorf("directory.ReplaceAll: append %s: %w", a.Code, err)
		}
	}
	d.Invalidate()
	return nil
}

// parseAirportRow maps an Airports sheet row to a domain.Airport.
func parseAirportRow(row []string) (domain.Airport, error) {
	if len(row) < 4 {
		return domain.Airport{}, fmt.Errorf("airport row has %d cells, want 4", len(row))
	}
	lat, err := strconv.ParseFloat(row[rowstore.AirportColLat-1], 64)
	if err != nil {
		return domain.Airport{}, fmt.Errorf("airport %s: bad lat %q", row[0], row[rowstore.AirportColLat-1])
	}
	lng, err := strconv.ParseFloat(row[rowstore.AirportColLng-1], 64)
	if err != nil {
		return domain.Airport{}, fmt.Errorf("airport %s: bad lng %q", row[0], row[rowstore.AirportColLng-1])
	}
	return domain.Airport{
		Code: row[rowstore.AirportColCode-1],
		Name: row[rowstore.AirportColName-1],
		Lat:  lat,
		Lng:  lng,
	}, nil
}
