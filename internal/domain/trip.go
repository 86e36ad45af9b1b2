// Package domain contains the core data types for the Trip Atlas backend.
// This package has zero external dependencies and is imported by every other
// internal package (rowstore, directory, geocode, resolver, service, handler).
package domain

import "time"

// Trip represents a multi-leg journey.
// A trip is the top-level aggregate; legs belong to a trip and are stored
// separately, keyed by TripID.
type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Leg is one directed segment of a trip. Origin and Destination hold the raw
// strings as entered: a 3-letter airport code for flights, free text for
// every other mode. Coordinates are never stored on the leg — they are
// re-resolved on every read so directory and geocoder updates take effect
// retroactively.
type Leg struct {
	TripID        string     `json:"tripId"`
	Order         int        `json:"order"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate time.Time  `json:"departureDate"`
	ArrivalDate   *time.Time `json:"arrivalDate,omitempty"` // nil when unknown
	Mode          Mode       `json:"mode"`
}

// ResolvedLeg is the read model for a leg: the stored fields plus the
// coordinates its endpoints currently resolve to. A resolution pointer is nil
// when the endpoint no longer resolves (e.g. the directory entry was removed
// after the leg was written); the leg itself is still returned.
type ResolvedLeg struct {
	Leg
	OriginResolved      *ResolvedLocation `json:"originResolved,omitempty"`
	DestinationResolved *ResolvedLocation `json:"destinationResolved,omitempty"`
}

// TripDetail is a trip together with its legs, sorted by Order ascending.
type TripDetail struct {
	Trip
	Legs []ResolvedLeg `json:"legs"`
}

// TripInput is the caller-facing shape for create and update.
// ID is optional on create — when blank the service derives one from the
// name and start year. Leg order values are not accepted from the caller;
// they are assigned from slice position.
type TripInput struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Legs      []LegInput
}

// LegInput is a single leg as supplied by the caller.
type LegInput struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ArrivalDate   *time.Time
	Mode          Mode
}
