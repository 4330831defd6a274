// Package apperror defines the error kinds shared by every layer of the service.
//
// Services return *AppError values that wrap one of the sentinel kinds below.
// Callers branch on the kind with errors.Is and read the human-readable text
// with errors.As, so a repository error wrapped by fmt.Errorf("...: %w") still
// maps to the right HTTP status at the edge.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrNotAvailable     = errors.New("not available")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource with the given id does not exist.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// Hidden reports a relationship-based denial with a not-found kind, so that
// non-participants learn nothing about the resource.
func Hidden(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func InvalidTimeRange(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidTimeRange,
		Message: message,
	}
}

// NotAvailable reports that the target exists but its state does not allow the action.
func NotAvailable(message string) *AppError {
	return &AppError{
		Err:     ErrNotAvailable,
		Message: message,
	}
}

// AlreadyExists reports a uniqueness violation on resource.field.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with %s %s already exists", resource, field, value),
		Field:   field,
	}
}

// Conflict reports that a write would break referential integrity.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
