package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

// BookingService runs the booking lifecycle: creation, the one-shot owner
// decision, and the time-bucketed listings.
//
// Relationship failures (a stranger viewing or deciding a booking, an owner
// booking their own item) are reported as NotFound so that non-participants
// learn nothing about bookings they are not part of.
type BookingService struct {
	store    repository.Store
	clock    clock.Clock
	recorder BookingRecorder
	logger   *slog.Logger
}

func NewBookingService(store repository.Store, clk clock.Clock, logger *slog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		clock:    clk,
		recorder: nopRecorder{},
		logger:   logger,
	}
}

// WithRecorder sets the sink for lifecycle events.
func (s *BookingService) WithRecorder(r BookingRecorder) *BookingService {
	s.recorder = r
	return s
}

// Create books itemID for the caller over [start, end). The new booking
// starts out WAITING.
func (s *BookingService) Create(ctx context.Context, callerID, itemID int64, start, end time.Time) (*model.Booking, error) {
	if !start.Before(end) {
		return nil, apperror.InvalidTimeRange("booking start must be before its end")
	}

	var booking *model.Booking
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		booker, err := r.GetUserByID(ctx, callerID)
		if err != nil {
			return err
		}
		item, err := r.GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return apperror.NotAvailable(fmt.Sprintf("item %d is not available for booking", item.ID))
		}
		if item.OwnerID == booker.ID {
			return apperror.Hidden("owner cannot book their own item")
		}

		b := &model.Booking{
			Start:  start.UTC(),
			End:    end.UTC(),
			Status: model.StatusWaiting,
			Item:   *item,
			Booker: *booker,
		}
		if err := r.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.BookingCreated()
	s.logger.Info("booking created",
		slog.Int64("booking_id", booking.ID),
		slog.Int64("item_id", booking.Item.ID),
		slog.Int64("booker_id", booking.Booker.ID),
	)
	return booking, nil
}

// Decide approves or rejects a WAITING booking. Only the item owner may
// decide, only once, and only before the booking starts.
//
// The read, checks and write happen in one transaction, and the write only
// succeeds while the row is still WAITING.
func (s *BookingService) Decide(ctx context.Context, callerID, bookingID int64, approved bool) (*model.Booking, error) {
	now := s.clock.Now()

	var booking *model.Booking
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := r.GetUserByID(ctx, callerID); err != nil {
			return err
		}
		b, err := r.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.OwnerID() != callerID {
			return apperror.Hidden("only the item owner can decide on a booking")
		}
		if b.Status != model.StatusWaiting {
			return apperror.NotAvailable("booking decision has already been made")
		}
		if !b.Start.After(now) {
			return apperror.InvalidTimeRange("cannot decide on a booking that has already started")
		}

		to := model.Decision(approved)
		if err := r.UpdateBookingStatus(ctx, b.ID, model.StatusWaiting, to); err != nil {
			return fmt.Errorf("deciding booking: %w", err)
		}
		b.Status = to
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.BookingDecided(booking.Status)
	s.logger.Info("booking decided",
		slog.Int64("booking_id", booking.ID),
		slog.String("status", string(booking.Status)),
	)
	return booking, nil
}

// Get returns a booking to its booker or to the owner of the booked item.
func (s *BookingService) Get(ctx context.Context, callerID, bookingID int64) (*model.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	b, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Booker.ID != callerID && b.OwnerID() != callerID {
		return nil, apperror.Hidden("only the booker or the item owner can view a booking")
	}
	return b, nil
}

// ListByBooker pages through the caller's own bookings in the given state,
// newest start first.
func (s *BookingService) ListByBooker(ctx context.Context, callerID int64, state string, from, size int) ([]model.Booking, error) {
	return s.list(ctx, callerID, state, from, size, func(f *repository.BookingFilter) {
		f.BookerID = callerID
	})
}

// ListByOwner pages through bookings of the caller's items in the given
// state, newest start first.
func (s *BookingService) ListByOwner(ctx context.Context, callerID int64, state string, from, size int) ([]model.Booking, error) {
	return s.list(ctx, callerID, state, from, size, func(f *repository.BookingFilter) {
		f.OwnerID = callerID
	})
}

// list reports an empty page as NotFound. Clients of the original API
// branch on that status instead of on an empty array.
func (s *BookingService) list(ctx context.Context, callerID int64, token string, from, size int, scope func(*repository.BookingFilter)) ([]model.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	state, err := model.ParseBookingState(token)
	if err != nil {
		return nil, err
	}
	opts, err := pageOptions(from, size)
	if err != nil {
		return nil, err
	}

	filter := repository.BookingFilter{State: state, Now: s.clock.Now()}
	scope(&filter)

	bookings, err := s.store.ListBookings(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, apperror.Hidden(fmt.Sprintf("user %d has no bookings in state %s", callerID, state))
	}
	return bookings, nil
}

// Summaries returns the item's last and next non-rejected bookings relative
// to now. Either may be nil.
func (s *BookingService) Summaries(ctx context.Context, itemID int64) (last, next *model.BookingSummary, err error) {
	now := s.clock.Now()
	if last, err = s.store.LastBooking(ctx, itemID, now); err != nil {
		return nil, nil, fmt.Errorf("finding last booking: %w", err)
	}
	if next, err = s.store.NextBooking(ctx, itemID, now); err != nil {
		return nil, nil, fmt.Errorf("finding next booking: %w", err)
	}
	return last, next, nil
}

// ItemSchedule returns the owner's item with every booking of it that is not
// REJECTED, newest start first.
func (s *BookingService) ItemSchedule(ctx context.Context, callerID, itemID int64) (*model.Item, []model.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, callerID); err != nil {
		return nil, nil, err
	}
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item.OwnerID != callerID {
		return nil, nil, apperror.Forbidden("only the item owner can export its bookings")
	}

	all, err := s.store.ListBookings(ctx,
		repository.BookingFilter{ItemID: itemID, State: model.StateAll, Now: s.clock.Now()},
		repository.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("listing item bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if b.Status != model.StatusRejected {
			bookings = append(bookings, b)
		}
	}
	return item, bookings, nil
}
