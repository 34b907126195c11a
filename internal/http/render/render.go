// Package render writes JSON responses and maps domain errors to status codes.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusOf maps err onto an HTTP status.
func StatusOf(err error) int {
	var partial *ledger.PartialWriteError

	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsProtected(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Internal failures are logged and
// hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)

		msg = http.StatusText(status)
	}

	JSON(w, status, errorResponse{Error: msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.NewValidationError("body", err.Error())
	}

	return nil
}

// IDParam parses the {id} URL parameter.
func IDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NewValidationError("id", "must be a UUID")
	}

	return id, nil
}
