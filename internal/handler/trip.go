package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// TripRequest is the wire shape for create and update. All dates are
// YYYY-MM-DD. ID is accepted on create only; updates take it from the path.
type TripRequest struct {
	ID        string              `json:"id,omitempty"`
	Name      string              `json:"name"`
	StartDate *openapi_types.Date `json:"startDate"`
	EndDate   *openapi_types.Date `json:"endDate"`
	Legs      []LegRequest        `json:"legs"`
}

// LegRequest is one leg of a TripRequest. Mode defaults to "flight" when
// omitted; unknown values are rejected before the service is called.
type LegRequest struct {
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureDate *openapi_types.Date `json:"departureDate"`
	ArrivalDate   *openapi_types.Date `json:"arrivalDate,omitempty"`
	Mode          string              `json:"mode,omitempty"`
}

// TripResponse mirrors domain.TripDetail on the wire.
type TripResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	StartDate openapi_types.Date `json:"startDate"`
	EndDate   openapi_types.Date `json:"endDate"`
	Legs      []LegResponse      `json:"legs"`
}

// LegResponse is one leg with its freshly resolved endpoints.
type LegResponse struct {
	Order               int                      `json:"order"`
	Origin              string                   `json:"origin"`
	Destination         string                   `json:"destination"`
	DepartureDate       openapi_types.Date       `json:"departureDate"`
	ArrivalDate         *openapi_types.Date      `json:"arrivalDate,omitempty"`
	Mode                string                   `json:"mode"`
	OriginResolved      *domain.ResolvedLocation `json:"originResolved,omitempty"`
	DestinationResolved *domain.ResolvedLocation `json:"destinationResolved,omitempty"`
}

// tripListResponse is the envelope for GET /api/trips.
type tripListResponse struct {
	Trips []TripResponse `json:"trips"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ListTrips handles GET /api/trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, tripListResponse{Error: &ErrorDetail{Code: code, Message: errMessage(err)}})
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, tripToResponse(t))
	}
	writeJSON(w, http.StatusOK, tripListResponse{Trips: out})
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	in, err := decodeTripRequest(r)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	created, err := s.trips.Create(r.Context(), in)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResult{Success: true, Trip: tripToResponse(created)})
}

// UpdateTrip handles PUT /api/trips/{id}. The path id wins over any id in
// the body — the trip id is immutable.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	in, err := decodeTripRequest(r)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	updated, err := s.trips.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResult{Success: true, Trip: tripToResponse(updated)})
}

// DeleteTrip handles DELETE /api/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResult{Success: true})
}

// --- mapping helpers --------------------------------------------------------

// decodeTripRequest parses and converts a request body into a
// domain.TripInput. Malformed JSON and unknown modes surface as validation
// errors so the caller always gets the structured envelope.
func decodeTripRequest(r *http.Request) (domain.TripInput, error) {
	var body TripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.TripInput{}, errors.Join(domain.ErrValidation, err)
	}

	in := domain.TripInput{
		ID:   body.ID,
		Name: body.Name,
	}
	if body.StartDate != nil {
		in.StartDate = body.StartDate.Time
	}
	if body.EndDate != nil {
		in.EndDate = body.EndDate.Time
	}

	for _, leg := range body.Legs {
		mode, err := domain.ParseMode(leg.Mode)
		if err != nil {
			return domain.TripInput{}, err
		}
		li := domain.LegInput{
			Origin:      leg.Origin,
			Destination: leg.Destination,
			Mode:        mode,
		}
		if leg.DepartureDate != nil {
			li.DepartureDate = leg.DepartureDate.Time
		}
		if leg.ArrivalDate != nil {
			at := leg.ArrivalDate.Time
			li.ArrivalDate = &at
		}
		in.Legs = append(in.Legs, li)
	}
	return in, nil
}

// tripToResponse converts a domain.TripDetail into its wire shape.
func tripToResponse(t domain.TripDetail) TripResponse {
	resp := TripResponse{
		ID:        t.ID,
		Name:      t.Name,
		StartDate: openapi_types.Date{Time: t.StartDate},
		EndDate:   openapi_types.Date{Time: t.EndDate},
		Legs:      make([]LegResponse, 0, len(t.Legs)),
	}
	for _, leg := range t.Legs {
		lr := LegResponse{
			Order:               leg.Order,
			Origin:              leg.Origin,
			Destination:         leg.Destination,
			DepartureDate:       openapi_types.Date{Time: leg.DepartureDate},
			Mode:                leg.Mode.String(),
			OriginResolved:      leg.OriginResolved,
			DestinationResolved: leg.DestinationResolved,
		}
		if leg.ArrivalDate != nil {
			lr.ArrivalDate = &openapi_types.Date{Time: *leg.ArrivalDate}
		}
		resp.Legs = append(resp.Legs, lr)
	}
	return resp
}
