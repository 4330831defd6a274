package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/ical"
	"github.com/sakif/shareit/internal/model"
)

// BookingService is what BookingHandler needs from the booking engine.
type BookingService interface {
	Create(ctx context.Context, callerID, itemID int64, start, end time.Time) (*model.Booking, error)
	Decide(ctx context.Context, callerID, bookingID int64, approved bool) (*model.Booking, error)
	Get(ctx context.Context, callerID, bookingID int64) (*model.Booking, error)
	ListByBooker(ctx context.Context, callerID int64, state string, from, size int) ([]model.Booking, error)
	ListByOwner(ctx context.Context, callerID int64, state string, from, size int) ([]model.Booking, error)
	ItemSchedule(ctx context.Context, callerID, itemID int64) (*model.Item, []model.Booking, error)
}

// calendarTTL is the refresh interval suggested to calendar clients.
const calendarTTL = time.Hour

// BookingHandler serves /bookings and the per-item calendar feed.
type BookingHandler struct {
	bookings BookingService
	clock    clock.Clock
	logger   *slog.Logger
}

func NewBookingHandler(bookings BookingService, clk clock.Clock, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, clock: clk, logger: logger}
}

type createBookingRequest struct {
	ItemID int64      `json:"itemId" validate:"required,gt=0"`
	Start  *timestamp `json:"start"  validate:"required"`
	End    *timestamp `json:"end"    validate:"required"`
}

// HandleCreate books an item for the caller. The booking starts WAITING.
//
// HTTP: POST /bookings
// REQUEST BODY: {"itemId": 3, "start": "2026-04-02T10:00:00Z", "end": "2026-04-02T12:00:00Z"}
func (h *BookingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.bookings.Create(r.Context(), caller, req.ItemID, req.Start.Time, req.End.Time)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// HandleDecide records the owner's answer.
//
// HTTP: PATCH /bookings/{bookingId}?approved=true
func (h *BookingHandler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	raw := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("approved",
			fmt.Sprintf("approved must be true or false, got %q", raw)))
		return
	}

	booking, err := h.bookings.Decide(r.Context(), caller, bookingID, approved)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// HTTP: GET /bookings/{bookingId}
func (h *BookingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.bookings.Get(r.Context(), caller, bookingID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// HTTP: GET /bookings?state=ALL&from=0&size=10
func (h *BookingHandler) HandleListByBooker(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookings.ListByBooker)
}

// HTTP: GET /bookings/owner?state=ALL&from=0&size=10
func (h *BookingHandler) HandleListByOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookings.ListByOwner)
}

type listFunc func(ctx context.Context, callerID int64, state string, from, size int) ([]model.Booking, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	from, size, err := page(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	bookings, err := fn(r.Context(), caller, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// HandleItemCalendar exports the owner's view of an item's bookings as an
// iCalendar feed. Rejected bookings are left out.
//
// HTTP: GET /items/{itemId}/bookings.ics
func (h *BookingHandler) HandleItemCalendar(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, bookings, err := h.bookings.ItemSchedule(r.Context(), caller, itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	body := ical.Generate(
		ical.Feed{Name: item.Name + " bookings", TTL: calendarTTL},
		ical.BookingEvents(*item, bookings, h.clock.Now()),
	)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="item-%d-bookings.ics"`, item.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Warn("failed to write calendar", slog.String("error", err.Error()))
	}
}
