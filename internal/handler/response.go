package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "item not found with id 7"}
// Validation errors also name the offending input:
//   {"error": "validation_error", "message": "size must be positive", "field": "size"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/shareit/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input, for validation errors
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once Encode
// writes to w, the headers are sent and later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorKinds maps each apperror sentinel to its HTTP status and code.
// Order matters only in that every AppError wraps exactly one sentinel.
var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrInvalidTimeRange, http.StatusBadRequest, "invalid_time_range"},
	{apperror.ErrNotAvailable, http.StatusBadRequest, "not_available"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer returns apperror kinds and never knows about HTTP; this
// is the only place where kinds become statuses. errors.As walks the whole
// wrap chain, so fmt.Errorf("...: %w", appErr) still maps correctly.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(appErr, k.kind) {
				resp := ErrorResponse{Error: k.code, Message: appErr.Message}
				if k.kind == apperror.ErrValidation {
					resp.Field = appErr.Field
				}
				writeJSON(w, k.status, resp)
				return
			}
		}
	}

	// Unknown error: log it, but NEVER expose internal details to the client.
	// The raw message might contain SQL or file paths.
	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
