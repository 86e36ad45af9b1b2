package handler

import "net/http"

// GetHealth handles GET /healthz.
// Returns 200 {"status":"ok"} when the backing sheets are in place, and
// 503 when the store check fails (e.g. the bootstrap migration never ran).
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
