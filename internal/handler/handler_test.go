package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shareit/internal/auth"
	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/handler"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/service"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// fakes records the last call to every service method and returns canned
// results. Each test sets only what it needs.
type fakes struct {
	users    *fakeUsers
	items    *fakeItems
	comments *fakeComments
	bookings *fakeBookings
	requests *fakeRequests
}

type fakeUsers struct {
	user     *model.User
	users    []model.User
	err      error
	gotID    int64
	gotName  string
	gotMail  string
	gotPatch model.UserPatch
}

func (f *fakeUsers) Create(_ context.Context, name, email string) (*model.User, error) {
	f.gotName, f.gotMail = name, email
	return f.user, f.err
}

func (f *fakeUsers) Update(_ context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	f.gotID, f.gotPatch = id, patch
	return f.user, f.err
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*model.User, error) {
	f.gotID = id
	return f.user, f.err
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) { return f.users, f.err }

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.gotID = id
	return f.err
}

type fakeItems struct {
	item      *model.Item
	details   *model.ItemDetails
	list      []model.ItemDetails
	found     []model.Item
	err       error
	gotCaller int64
	gotItemID int64
	gotNew    service.NewItem
	gotPatch  model.ItemPatch
	gotText   string
	gotFrom   int
	gotSize   int
}

func (f *fakeItems) Create(_ context.Context, callerID int64, in service.NewItem) (*model.Item, error) {
	f.gotCaller, f.gotNew = callerID, in
	return f.item, f.err
}

func (f *fakeItems) Update(_ context.Context, callerID, itemID int64, patch model.ItemPatch) (*model.Item, error) {
	f.gotCaller, f.gotItemID, f.gotPatch = callerID, itemID, patch
	return f.item, f.err
}

func (f *fakeItems) Get(_ context.Context, callerID, itemID int64) (*model.ItemDetails, error) {
	f.gotCaller, f.gotItemID = callerID, itemID
	return f.details, f.err
}

func (f *fakeItems) ListMine(_ context.Context, callerID int64, from, size int) ([]model.ItemDetails, error) {
	f.gotCaller, f.gotFrom, f.gotSize = callerID, from, size
	return f.list, f.err
}

func (f *fakeItems) Delete(_ context.Context, itemID int64) error {
	f.gotItemID = itemID
	return f.err
}

func (f *fakeItems) Search(_ context.Context, text string, from, size int) ([]model.Item, error) {
	f.gotText, f.gotFrom, f.gotSize = text, from, size
	return f.found, f.err
}

type fakeComments struct {
	comment   *model.Comment
	err       error
	gotCaller int64
	gotItemID int64
	gotText   string
}

func (f *fakeComments) Create(_ context.Context, callerID, itemID int64, text string) (*model.Comment, error) {
	f.gotCaller, f.gotItemID, f.gotText = callerID, itemID, text
	return f.comment, f.err
}

type fakeBookings struct {
	booking     *model.Booking
	list        []model.Booking
	item        *model.Item
	err         error
	gotCaller   int64
	gotID       int64
	gotStart    time.Time
	gotEnd      time.Time
	gotApproved bool
	gotState    string
	gotFrom     int
	gotSize     int
	gotScope    string
}

func (f *fakeBookings) Create(_ context.Context, callerID, itemID int64, start, end time.Time) (*model.Booking, error) {
	f.gotCaller, f.gotID, f.gotStart, f.gotEnd = callerID, itemID, start, end
	return f.booking, f.err
}

func (f *fakeBookings) Decide(_ context.Context, callerID, bookingID int64, approved bool) (*model.Booking, error) {
	f.gotCaller, f.gotID, f.gotApproved = callerID, bookingID, approved
	return f.booking, f.err
}

func (f *fakeBookings) Get(_ context.Context, callerID, bookingID int64) (*model.Booking, error) {
	f.gotCaller, f.gotID = callerID, bookingID
	return f.booking, f.err
}

func (f *fakeBookings) ListByBooker(_ context.Context, callerID int64, state string, from, size int) ([]model.Booking, error) {
	f.gotScope = "booker"
	f.gotCaller, f.gotState, f.gotFrom, f.gotSize = callerID, state, from, size
	return f.list, f.err
}

func (f *fakeBookings) ListByOwner(_ context.Context, callerID int64, state string, from, size int) ([]model.Booking, error) {
	f.gotScope = "owner"
	f.gotCaller, f.gotState, f.gotFrom, f.gotSize = callerID, state, from, size
	return f.list, f.err
}

func (f *fakeBookings) ItemSchedule(_ context.Context, callerID, itemID int64) (*model.Item, []model.Booking, error) {
	f.gotCaller, f.gotID = callerID, itemID
	return f.item, f.list, f.err
}

type fakeRequests struct {
	req       *model.ItemRequest
	list      []model.ItemRequest
	err       error
	gotCaller int64
	gotID     int64
	gotDesc   string
	gotFrom   int
	gotSize   int
}

func (f *fakeRequests) Create(_ context.Context, callerID int64, description string) (*model.ItemRequest, error) {
	f.gotCaller, f.gotDesc = callerID, description
	return f.req, f.err
}

func (f *fakeRequests) ListMine(_ context.Context, callerID int64) ([]model.ItemRequest, error) {
	f.gotCaller = callerID
	return f.list, f.err
}

func (f *fakeRequests) ListOthers(_ context.Context, callerID int64, from, size int) ([]model.ItemRequest, error) {
	f.gotCaller, f.gotFrom, f.gotSize = callerID, from, size
	return f.list, f.err
}

func (f *fakeRequests) Get(_ context.Context, callerID, requestID int64) (*model.ItemRequest, error) {
	f.gotCaller, f.gotID = callerID, requestID
	return f.req, f.err
}

// newTestRouter mounts every handler on the same paths the server uses.
func newTestRouter(t *testing.T) (http.Handler, *fakes) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	f := &fakes{
		users:    &fakeUsers{},
		items:    &fakeItems{},
		comments: &fakeComments{},
		bookings: &fakeBookings{},
		requests: &fakeRequests{},
	}

	users := handler.NewUserHandler(f.users, logger)
	items := handler.NewItemHandler(f.items, f.comments, logger)
	bookings := handler.NewBookingHandler(f.bookings, clock.NewManual(testNow), logger)
	requests := handler.NewItemRequestHandler(f.requests, logger)

	r := chi.NewRouter()
	r.Use(auth.Identify)
	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.HandleCreate)
		r.Get("/", users.HandleList)
		r.Get("/{userId}", users.HandleGet)
		r.Patch("/{userId}", users.HandleUpdate)
		r.Delete("/{userId}", users.HandleDelete)
	})
	r.Route("/items", func(r chi.Router) {
		r.Post("/", items.HandleCreate)
		r.Get("/", items.HandleListMine)
		r.Get("/search", items.HandleSearch)
		r.Get("/{itemId}", items.HandleGet)
		r.Patch("/{itemId}", items.HandleUpdate)
		r.Delete("/{itemId}", items.HandleDelete)
		r.Post("/{itemId}/comment", items.HandleComment)
		r.Get("/{itemId}/bookings.ics", bookings.HandleItemCalendar)
	})
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", bookings.HandleCreate)
		r.Get("/", bookings.HandleListByBooker)
		r.Get("/owner", bookings.HandleListByOwner)
		r.Get("/{bookingId}", bookings.HandleGet)
		r.Patch("/{bookingId}", bookings.HandleDecide)
	})
	r.Route("/requests", func(r chi.Router) {
		r.Post("/", requests.HandleCreate)
		r.Get("/", requests.HandleListMine)
		r.Get("/all", requests.HandleListOthers)
		r.Get("/{requestId}", requests.HandleGet)
	})
	return r, f
}

// do sends a request as caller (0 means no caller header).
func do(h http.Handler, method, target string, caller int64, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != 0 {
		req.Header.Set(auth.CallerHeader, strconv.FormatInt(caller, 10))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "body: %s", rr.Body.String())
	return resp
}

func wrap(err error) error {
	return fmt.Errorf("loading: %w", err)
}

func doWithHeaders(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
