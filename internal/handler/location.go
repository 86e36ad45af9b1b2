package handler

import (
	"net/http"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// SearchLocations handles GET /api/locations/search?q=&mode=&limit=.
// Flight mode delegates to the ranked airport search, which applies the
// limit parameter; every other mode geocodes the query and returns at most
// one match, since the geocoder has no suggestion surface.
func (s *Server) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, map[string]any{"error": ErrorDetail{Code: code, Message: errMessage(err)}})
		return
	}

	if mode.IsFlight() {
		s.SearchAirports(w, r)
		return
	}

	loc, err := s.geocoder.Geocode(r.Context(), query)
	if err != nil {
		// A miss is an empty suggestion list, not an error.
		writeJSON(w, http.StatusOK, []domain.ResolvedLocation{})
		return
	}
	writeJSON(w, http.StatusOK, []domain.ResolvedLocation{loc})
}
