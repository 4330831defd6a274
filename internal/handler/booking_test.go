package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
)

func sampleBooking(status model.BookingStatus) *model.Booking {
	return &model.Booking{
		ID:     7,
		Start:  time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC),
		Status: status,
		Item:   model.Item{ID: 3, Name: "Drill", Description: "Cordless", Available: true, OwnerID: 1},
		Booker: model.User{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}
}

func TestBookingHandler_Create(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.booking = sampleBooking(model.StatusWaiting)

	rr := do(router, http.MethodPost, "/bookings", 2,
		`{"itemId":3,"start":"2026-04-01T10:00:00Z","end":"2026-04-01T11:00:00Z"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{
		"id": 7, "start": "2026-04-01T10:00:00Z", "end": "2026-04-01T11:00:00Z", "status": "WAITING",
		"item": {"id": 3, "name": "Drill", "description": "Cordless", "available": true, "requestId": null},
		"booker": {"id": 2, "name": "Bob", "email": "bob@example.com"}
	}`, rr.Body.String())
	assert.Equal(t, int64(2), f.bookings.gotCaller)
	assert.Equal(t, int64(3), f.bookings.gotID)
	assert.True(t, f.bookings.gotStart.Equal(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)))
}

func TestBookingHandler_CreateAcceptsLocalTimes(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.booking = sampleBooking(model.StatusWaiting)

	rr := do(router, http.MethodPost, "/bookings", 2,
		`{"itemId":3,"start":"2026-04-01T10:00:00","end":"2026-04-01T12:30:00+02:00"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), f.bookings.gotStart)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC), f.bookings.gotEnd)
}

func TestBookingHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing item", `{"start":"2026-04-01T10:00:00Z","end":"2026-04-01T11:00:00Z"}`, "itemId"},
		{"missing start", `{"itemId":3,"end":"2026-04-01T11:00:00Z"}`, "start"},
		{"missing end", `{"itemId":3,"start":"2026-04-01T10:00:00Z"}`, "end"},
		{"garbage time", `{"itemId":3,"start":"tomorrow","end":"2026-04-01T11:00:00Z"}`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, f := newTestRouter(t)

			rr := do(router, http.MethodPost, "/bookings", 2, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.field, decodeError(t, rr).Field)
			assert.Zero(t, f.bookings.gotCaller)
		})
	}
}

func TestBookingHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"time range", apperror.InvalidTimeRange("booking start must be before its end"), http.StatusBadRequest, "invalid_time_range"},
		{"unavailable", apperror.NotAvailable("item 3 is not available for booking"), http.StatusBadRequest, "not_available"},
		{"own item", apperror.Hidden("owner cannot book their own item"), http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, f := newTestRouter(t)
			f.bookings.err = tt.err

			rr := do(router, http.MethodPost, "/bookings", 2,
				`{"itemId":3,"start":"2026-04-01T11:00:00Z","end":"2026-04-01T10:00:00Z"}`)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Error)
		})
	}
}

func TestBookingHandler_Decide(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.booking = sampleBooking(model.StatusRejected)

	rr := do(router, http.MethodPatch, "/bookings/7?approved=false", 1, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"status":"REJECTED"`)
	assert.Equal(t, int64(7), f.bookings.gotID)
	assert.False(t, f.bookings.gotApproved)

	rr = do(router, http.MethodPatch, "/bookings/7?approved=maybe", 1, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "approved", decodeError(t, rr).Field)

	rr = do(router, http.MethodPatch, "/bookings/7", 1, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBookingHandler_ListScopes(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.list = []model.Booking{*sampleBooking(model.StatusApproved)}

	rr := do(router, http.MethodGet, "/bookings?state=PAST&from=10&size=5", 2, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "booker", f.bookings.gotScope)
	assert.Equal(t, "PAST", f.bookings.gotState)
	assert.Equal(t, 10, f.bookings.gotFrom)
	assert.Equal(t, 5, f.bookings.gotSize)

	rr = do(router, http.MethodGet, "/bookings/owner", 1, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "owner", f.bookings.gotScope)
	assert.Equal(t, "", f.bookings.gotState)
	assert.Equal(t, 0, f.bookings.gotFrom)
	assert.Equal(t, 10, f.bookings.gotSize)
}

func TestBookingHandler_UnknownState(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.err = apperror.ValidationFailed("state", "Unknown state: SOON")

	rr := do(router, http.MethodGet, "/bookings?state=SOON", 2, "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "Unknown state: SOON", resp.Message)
	assert.Equal(t, "state", resp.Field)
}

func TestBookingHandler_ItemCalendar(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.item = &model.Item{ID: 3, Name: "Drill", OwnerID: 1}
	f.bookings.list = []model.Booking{*sampleBooking(model.StatusApproved)}

	rr := do(router, http.MethodGet, "/items/3/bookings.ics", 1, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/calendar"))
	body := rr.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR\r\n")
	assert.Contains(t, body, "UID:booking-7@shareit\r\n")
	assert.Contains(t, body, "DTSTAMP:20260401T090000Z\r\n")
	assert.Contains(t, body, "STATUS:CONFIRMED\r\n")
	assert.Equal(t, int64(1), f.bookings.gotCaller)
	assert.Equal(t, int64(3), f.bookings.gotID)
}

func TestBookingHandler_ItemCalendarForbidden(t *testing.T) {
	router, f := newTestRouter(t)
	f.bookings.err = apperror.Forbidden("only the item owner can export its bookings")

	rr := do(router, http.MethodGet, "/items/3/bookings.ics", 2, "")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden", decodeError(t, rr).Error)
}
