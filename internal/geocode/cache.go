package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// Cache is the read-through persistent geocode cache. Entries are
// append-only: a normalized query is written at most once and never updated
// or evicted in normal operation, only bulk-cleared. Only successful
// resolutions are persisted — provider failures self-heal on the next call
// instead of poisoning the cache.
type Cache struct {
	store  rowstore.Store
	client Client
	now    func() time.Time
}

// NewCache constructs a Cache over the given store and external client.
func NewCache(store rowstore.Store, client Client) *Cache {
	return &Cache{store: store, client: client, now: time.Now}
}

// normalize produces the cache key: lowercased and trimmed.
func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Geocode resolves an address, consulting the cache first.
// Blank input is rejected without any lookup or cache access.
// Returns domain.ErrNotFound when neither the cache nor the provider can
// resolve the address.
func (c *Cache) Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.Cache.Geocode: empty address: %w", domain.ErrNotFound)
	}
	key := normalize(trimmed)

	if loc, err := c.find(ctx, key); err == nil {
		return loc, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.Cache.Geocode: %w", err)
	}

	// Cache miss: ask the provider with the original-cased, trimmed address.
	// Any provider error is fail-soft not-found and is never cached.
	loc, err := c.client.Geocode(ctx, trimmed)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.Cache.Geocode: %q: %w", trimmed, domain.ErrNotFound)
	}

	// Re-check before insert: another request may have cached the same query
	// while the provider call was in flight. No lock is taken here; a benign
	// race that still produces a duplicate row is resolved by first-match-wins
	// on subsequent lookups.
	if _, err := c.store.FindExactMatch(ctx, rowstore.SheetGeocode, key, rowstore.GeocodeColQuery); errors.Is(err, domain.ErrNotFound) {
		cells := []string{
			key,
			loc.Name,
			strconv.FormatFloat(loc.Lat, 'f', -1, 64),
			strconv.FormatFloat(loc.Lng, 'f', -1, 64),
			c.now().UTC().Format(time.RFC3339),
		}
		if err := c.store.AppendRow(ctx, rowstore.SheetGeocode, cells); err != nil {
			return domain.ResolvedLocation{}, fmt.Errorf("geocode.Cache.Geocode: persist: %w", err)
		}
	}

	return loc, nil
}

// find looks up a normalized query in the cache sheet. First match wins.
func (c *Cache) find(ctx context.Context, key string) (domain.ResolvedLocation, error) {
	pos, err := c.store.FindExactMatch(ctx, rowstore.SheetGeocode, key, rowstore.GeocodeColQuery)
	if err != nil {
		return domain.ResolvedLocation{}, err
	}
	row, err := c.store.GetRow(ctx, rowstore.SheetGeocode, pos)
	if err != nil {
		return domain.ResolvedLocation{}, err
	}
	if len(row) < 4 {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode cache row %d has %d cells", pos, len(row))
	}
	lat, err := strconv.ParseFloat(row[rowstore.GeocodeColLat-1], 64)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode cache row %d: bad lat %q", pos, row[rowstore.GeocodeColLat-1])
	}
	lng, err := strconv.ParseFloat(row[rowstore.GeocodeColLng-1], 64)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode cache row %d: bad lng %q", pos, row[rowstore.GeocodeColLng-1])
	}
	return domain.ResolvedLocation{
		Name: row[rowstore.GeocodeColName-1],
		Lat:  lat,
		Lng:  lng,
	}, nil
}

// Clear deletes every cache row below the header. It does not touch the
// airport directory.
func (c *Cache) Clear(ctx context.Context) error {
	rows, err := c.store.GetRows(ctx, rowstore.SheetGeocode)
	if err != nil {
		return fmt.Errorf("geocode.Cache.Clear: %w", err)
	}
	// Highest-first so earlier deletions do not shift rows still pending.
	for pos := len(rows); pos > 1; pos-- {
		if err := c.store.DeleteRow(ctx, rowstore.SheetGeocode, pos); err != nil {
			return fmt.Errorf("geocode.Cache.Clear: row %d: %w", pos, err)
		}
	}
	return nil
}
