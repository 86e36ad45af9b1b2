// Package resolver dispatches location resolution by transport mode:
// flight endpoints go through the airport directory, everything else
// through the geocode cache.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// AirportLookup is the directory surface the resolver depends on.
type AirportLookup interface {
	Lookup(ctx context.Context, code string) (domain.Airport, error)
}

// Geocoder is the free-text resolution surface the resolver depends on.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error)
}

// Resolver routes a raw location string to the lookup path for its mode.
type Resolver struct {
	airports AirportLookup
	geocoder Geocoder
}

// New constructs a Resolver.
func New(airports AirportLookup, geocoder Geocoder) *Resolver {
	return &Resolver{airports: airports, geocoder: geocoder}
}

// Resolve maps a raw location string to coordinates under the given mode.
// Blank input is an immediate miss. Flight locations are uppercased and
// looked up as airport codes; all other modes geocode the trimmed,
// original-cased text. Returns domain.ErrNotFound when the location does
// not resolve.
func (r *Resolver) Resolve(ctx context.Context, location string, mode domain.Mode) (domain.ResolvedLocation, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return domain.ResolvedLocation{}, fmt.Errorf("resolver.Resolve: empty location: %w", domain.ErrNotFound)
	}

	if mode.IsFlight() {
		a, err := r.airports.Lookup(ctx, strings.ToUpper(trimmed))
		if err != nil {
			return domain.ResolvedLocation{}, fmt.Errorf("resolver.Resolve: %w", err)
		}
		return domain.ResolvedLocation{Code: a.Code, Name: a.Name, Lat: a.Lat, Lng: a.Lng}, nil
	}

	loc, err := r.geocoder.Geocode(ctx, trimmed)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("resolver.Resolve: %w", err)
	}
	return loc, nil
}

// Validate reports whether the location resolves under the mode.
func (r *Resolver) Validate(ctx context.Context, location string, mode domain.Mode) bool {
	_, err := r.Resolve(ctx, location, mode)
	return err == nil
}
