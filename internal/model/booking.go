package model

import (
	"time"

	"github.com/sakif/shareit/internal/apperror"
)

// BookingStatus is the approval state of a booking.
// WAITING is the only non-terminal status; it moves once to APPROVED or REJECTED.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Decision returns the terminal status for an owner's yes/no answer.
func Decision(approved bool) BookingStatus {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}

// Booking is a borrower's claim on an item for [Start, End).
//
// Item and Booker are joined in on read and are never stored alongside the booking.
type Booking struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Item   Item          `json:"item"`
	Booker User          `json:"booker"`
}

// OwnerID is the id of the user who owns the booked item.
func (b *Booking) OwnerID() int64 {
	return b.Item.OwnerID
}

// BookingSummary is the short form of a booking shown as an item's last or
// next booking.
type BookingSummary struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// BookingState selects bookings by where they sit relative to "now" and by status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState parses a case-sensitive state token. An empty token means ALL.
func ParseBookingState(s string) (BookingState, error) {
	switch st := BookingState(s); st {
	case "":
		return StateAll, nil
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	default:
		return "", apperror.ValidationFailed("state", "Unknown state: "+s)
	}
}

// Matches reports whether b belongs to state s at instant now.
//
// CURRENT is the open interval start < now < end. WAITING only covers
// bookings that have not started yet, so a stale WAITING booking drops out
// of that view while still showing under ALL and PAST/CURRENT.
func (s BookingState) Matches(b Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return b.Start.Before(now) && b.End.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Start.After(now) && b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	}
	return false
}
