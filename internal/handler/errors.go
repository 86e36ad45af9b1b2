package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// ErrorDetail is the error payload carried inside every failure envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mutationResult is the envelope for create/update/delete responses.
// Mutation failures are reported in-band as {success:false, error} rather
// than bare HTTP errors, so the UI always has a structured body to render.
type mutationResult struct {
	Success bool          `json:"success"`
	Trip    any           `json:"trip,omitempty"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// writeJSON serializes v with the given status. Encoding failures are logged
// but not surfaced — the status line has already been written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: encode response", "error", err)
	}
}

// writeMutationError maps a domain error to an HTTP status and the
// {success:false, error} envelope.
func writeMutationError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, mutationResult{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: errMessage(err)},
	})
}

// statusFor maps domain sentinel errors to an HTTP status and machine code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable, "lock_timeout"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// errMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.TripService.Create: validation error: leg 1: ..." →
// "leg 1: ...".
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []string{
		domain.ErrValidation.Error() + ": ",
		domain.ErrConflict.Error() + ": ",
		domain.ErrNotFound.Error() + ": ",
	} {
		if i := strings.Index(msg, sentinel); i >= 0 {
			return msg[i+len(sentinel):]
		}
	}
	return msg
}
