// Package respond writes JSON responses and maps service errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lexdesk/backoffice/internal/services"
	"github.com/rs/zerolog/log"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// NoContent writes 204
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Message writes an error body with an explicit status
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Status: status, Error: http.StatusText(status), Message: message})
}

// Error maps err to its status. Unclassified errors are logged and answered with a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		Message(w, status, "")
		return
	}

	log.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request rejected")
	Message(w, status, services.ErrorMessage(err))
}

// Status returns the HTTP status for err
func Status(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrTenantSelectorMissing):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTenantNotFound), errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into v, rejecting unknown fields
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &services.Error{Kind: services.ErrValidation, Message: "invalid request body", Cause: err}
	}
	return nil
}
