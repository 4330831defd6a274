// Package service contains the business rules of the sharing platform.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (rules)     → validates, checks ownership and booking state
//	Repository (SQLite) → reads and writes rows
//
// Services take repository interfaces, never the concrete store, and return
// apperror kinds rather than HTTP statuses. Every "now" comes from an
// injected clock.Clock so the temporal rules can be tested at fixed instants.
package service

import (
	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

// Validation constants.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 2000
	MaxCommentLength     = 2000
	DefaultPageSize      = 10
)

// pageOptions validates a caller's (from, size) pair. from is a zero-based
// record offset; size must be positive.
func pageOptions(from, size int) (repository.ListOptions, error) {
	if from < 0 {
		return repository.ListOptions{}, apperror.ValidationFailed("from", "from must not be negative")
	}
	if size <= 0 {
		return repository.ListOptions{}, apperror.ValidationFailed("size", "size must be positive")
	}
	return repository.Page(from, size), nil
}

// BookingRecorder receives booking lifecycle events, typically for metrics.
type BookingRecorder interface {
	BookingCreated()
	BookingDecided(status model.BookingStatus)
}

type nopRecorder struct{}

func (nopRecorder) BookingCreated()                    {}
func (nopRecorder) BookingDecided(model.BookingStatus) {}
