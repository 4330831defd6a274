// Package repository declares the storage contracts the services depend on.
//
// One concrete store (repository/sqlite) implements every interface here, so
// method names carry their entity (CreateUser, CreateItem, ...) to stay
// distinct on a single type.
package repository

import (
	"context"
	"time"

	"github.com/sakif/shareit/internal/model"
)

// ListOptions is an offset/limit window over an ordered result.
type ListOptions struct {
	Limit  int
	Offset int
}

// Page turns a caller's (from, size) pair into a window. The page index is
// from/size with floor division, so a from that is not a multiple of size
// snaps back to the start of its page.
func Page(from, size int) ListOptions {
	return ListOptions{
		Limit:  size,
		Offset: (from / size) * size,
	}
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItemByID(ctx context.Context, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64, opts ListOptions) ([]model.Item, error)
	// SearchItems matches text case-insensitively against name or description
	// of available items.
	SearchItems(ctx context.Context, text string, opts ListOptions) ([]model.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]model.Item, error)
}

type ItemRequestRepository interface {
	CreateItemRequest(ctx context.Context, req *model.ItemRequest) error
	GetItemRequestByID(ctx context.Context, id int64) (*model.ItemRequest, error)
	// ListItemRequestsByRequester returns the requester's own requests, newest first.
	ListItemRequestsByRequester(ctx context.Context, requesterID int64) ([]model.ItemRequest, error)
	// ListItemRequestsExcept returns everybody else's requests, oldest first.
	ListItemRequestsExcept(ctx context.Context, requesterID int64, opts ListOptions) ([]model.ItemRequest, error)
}

// BookingFilter narrows a booking listing. Exactly one of BookerID, OwnerID
// or ItemID is expected to be set; State is evaluated against Now.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	ItemID   int64
	State    model.BookingState
	Now      time.Time
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*model.Booking, error)
	// UpdateBookingStatus moves a booking from one status to another. It
	// fails with apperror.ErrNotAvailable if the stored status is not from.
	UpdateBookingStatus(ctx context.Context, id int64, from, to model.BookingStatus) error
	// ListBookings returns matching bookings ordered by start descending.
	ListBookings(ctx context.Context, filter BookingFilter, opts ListOptions) ([]model.Booking, error)
	// LastBooking is the latest-starting non-rejected booking of the item
	// that started before now, or nil.
	LastBooking(ctx context.Context, itemID int64, now time.Time) (*model.BookingSummary, error)
	// NextBooking is the earliest-starting non-rejected booking of the item
	// that starts after now, or nil.
	NextBooking(ctx context.Context, itemID int64, now time.Time) (*model.BookingSummary, error)
	// LatestFinishedBooking is the booker's booking of the item with the
	// latest end before now, or nil.
	LatestFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (*model.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]model.Comment, error)
}

// Repositories is the full set of storage operations.
type Repositories interface {
	UserRepository
	ItemRepository
	ItemRequestRepository
	BookingRepository
	CommentRepository
}

// Store adds transactions. fn receives repositories bound to the transaction;
// it commits when fn returns nil and rolls back otherwise. Inside fn, only the
// passed repositories may be used.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
