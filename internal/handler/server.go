// Package handler implements the HTTP handlers for the Trip Atlas API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, airport.go, location.go, health.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the row store or service layer.
type TripServicer interface {
	List(ctx context.Context) ([]domain.TripDetail, error)
	Create(ctx context.Context, in domain.TripInput) (domain.TripDetail, error)
	Update(ctx context.Context, id string, in domain.TripInput) (domain.TripDetail, error)
	Delete(ctx context.Context, id string) error
}

// AirportDirectory defines the directory operations the airport handlers
// depend on.
type AirportDirectory interface {
	Lookup(ctx context.Context, code string) (domain.Airport, error)
	Search(ctx context.Context, query string, limit int) ([]domain.AirportSuggestion, error)
}

// Geocoder is the free-text location search surface.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error)
}

// HealthChecker reports whether the backing store is serviceable.
type HealthChecker func(ctx context.Context) error

// Server holds the dependencies shared by all handlers.
type Server struct {
	trips    TripServicer
	airports AirportDirectory
	geocoder Geocoder
	health   HealthChecker
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, airports AirportDirectory, geocoder Geocoder, health HealthChecker) *Server {
	return &Server{trips: trips, airports: airports, geocoder: geocoder, health: health}
}

// Routes registers every endpoint on the given chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Put("/trips/{id}", s.UpdateTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)

		r.Get("/airports/search", s.SearchAirports)
		r.Get("/airports/{code}", s.ValidateAirport)
		r.Get("/locations/search", s.SearchLocations)
	})
}
