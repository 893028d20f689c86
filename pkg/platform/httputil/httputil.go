// Package httputil translates pipeline errors and payloads to HTTP responses.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "sirene/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type notFounder interface {
	NotFound() bool
}

// StatusFor maps an error to an HTTP status code. Extraction failures whose
// cause reports NotFound become 404; other upstream failures become 502.
func StatusFor(err error) int {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeExtraction:
		var nf notFounder
		if errors.As(err, &nf) && nf.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case dErrors.CodeTransformation, dErrors.CodeValidation, dErrors.CodeCoordinateConversion:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the error envelope. Internal errors omit the description.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: string(dErrors.CodeOf(err))}
	if status == http.StatusNotFound {
		resp.Error = "not_found"
	}
	if status != http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Description = de.Message
		}
	}
	WriteJSON(w, status, resp)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to encode response", "error", err)
	}
}
