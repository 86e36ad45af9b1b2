package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// SearchAirports handles GET /api/airports/search?q=&limit=.
// A blank query returns an empty list, not an error — the UI calls this on
// every keystroke.
func (s *Server) SearchAirports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := s.airports.Search(r.Context(), query, limit)
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, map[string]any{"error": ErrorDetail{Code: code, Message: errMessage(err)}})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ValidateAirport handles GET /api/airports/{code}.
// Responds with the airport record, or a JSON null when the code does not
// resolve — the UI treats null as "invalid code", not as a failure. Any
// other lookup error keeps its real status so a broken store does not look
// like an invalid code.
func (s *Server) ValidateAirport(w http.ResponseWriter, r *http.Request) {
	airport, err := s.airports.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		status, code := statusFor(err)
		writeJSON(w, status, map[string]any{"error": ErrorDetail{Code: code, Message: errMessage(err)}})
		return
	}
	writeJSON(w, http.StatusOK, airport)
}
