package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository/sqlite"
)

// t0 is "now" at the start of every service test.
var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// testEnv wires every service against one in-memory store and a manual clock.
type testEnv struct {
	clock    *clock.Manual
	store    *sqlite.DB
	recorder *countingRecorder
	users    *UserService
	items    *ItemService
	requests *ItemRequestService
	bookings *BookingService
	comments *CommentService
}

type countingRecorder struct {
	created int
	decided map[model.BookingStatus]int
}

func (r *countingRecorder) BookingCreated() { r.created++ }

func (r *countingRecorder) BookingDecided(status model.BookingStatus) {
	r.decided[status]++
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	clk := clock.NewManual(t0)
	rec := &countingRecorder{decided: map[model.BookingStatus]int{}}

	bookings := NewBookingService(store, clk, logger).WithRecorder(rec)
	return &testEnv{
		clock:    clk,
		store:    store,
		recorder: rec,
		users:    NewUserService(store, logger),
		items:    NewItemService(store, bookings, logger),
		requests: NewItemRequestService(store, clk, logger),
		bookings: bookings,
		comments: NewCommentService(store, clk, logger),
	}
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), name, name+"@example.com")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func (e *testEnv) item(t *testing.T, owner *model.User, name string, available bool) *model.Item {
	t.Helper()
	it, err := e.items.Create(context.Background(), owner.ID, NewItem{
		Name:        name,
		Description: name + " for rent",
		Available:   &available,
	})
	if err != nil {
		t.Fatalf("failed to create item %s: %v", name, err)
	}
	return it
}

func (e *testEnv) booking(t *testing.T, booker *model.User, item *model.Item, start, end time.Time) *model.Booking {
	t.Helper()
	b, err := e.bookings.Create(context.Background(), booker.ID, item.ID, start, end)
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	return b
}

func ptr[T any](v T) *T { return &v }
