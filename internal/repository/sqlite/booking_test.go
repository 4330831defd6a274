package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

const hour = time.Hour

func TestBookingCreate_FillsSnapshots(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "ann")
	booker := createTestUser(t, db, "bob")
	item := createTestItem(t, db, owner, "drill", true)

	b := createTestBooking(t, db, item, booker, base.Add(hour), base.Add(2*hour), model.StatusWaiting)

	assert.NotZero(t, b.ID)
	assert.Equal(t, model.StatusWaiting, b.Status)
	assert.Equal(t, *item, b.Item)
	assert.Equal(t, *booker, b.Booker)
	assert.True(t, b.Start.Equal(base.Add(hour)))
	assert.True(t, b.End.Equal(base.Add(2*hour)))
	assert.Equal(t, owner.ID, b.OwnerID())
}

func TestBookingCreate_RejectsInvertedRange(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "ann")
	booker := createTestUser(t, db, "bob")
	item := createTestItem(t, db, owner, "drill", true)

	b := &model.Booking{Start: base, End: base, Status: model.StatusWaiting, Item: *item, Booker: *booker}
	assert.Error(t, db.CreateBooking(context.Background(), b))
}

func TestBookingGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBookingByID(context.Background(), 77)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateBookingStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "ann")
	booker := createTestUser(t, db, "bob")
	item := createTestItem(t, db, owner, "drill", true)
	b := createTestBooking(t, db, item, booker, base.Add(hour), base.Add(2*hour), model.StatusWaiting)

	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, model.StatusWaiting, model.StatusApproved))

	found, err := db.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, found.Status)

	// the second decision loses
	err = db.UpdateBookingStatus(ctx, b.ID, model.StatusWaiting, model.StatusRejected)
	assert.True(t, errors.Is(err, apperror.ErrNotAvailable), "want ErrNotAvailable, got %v", err)

	err = db.UpdateBookingStatus(ctx, 999, model.StatusWaiting, model.StatusRejected)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// bookingFixture lays out one booking per bucket for a single owner and booker.
type bookingFixture struct {
	db            *DB
	owner, booker *model.User
	item          *model.Item
	past          *model.Booking
	current       *model.Booking
	future        *model.Booking
	rejected      *model.Booking
	staleWaiting  *model.Booking
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := newTestDB(t)
	f := &bookingFixture{db: db}
	f.owner = createTestUser(t, db, "ann")
	f.booker = createTestUser(t, db, "bob")
	f.item = createTestItem(t, db, f.owner, "drill", true)

	f.past = createTestBooking(t, db, f.item, f.booker, base.Add(-5*hour), base.Add(-4*hour), model.StatusApproved)
	f.current = createTestBooking(t, db, f.item, f.booker, base.Add(-hour), base.Add(hour), model.StatusApproved)
	f.future = createTestBooking(t, db, f.item, f.booker, base.Add(3*hour), base.Add(4*hour), model.StatusWaiting)
	f.rejected = createTestBooking(t, db, f.item, f.booker, base.Add(5*hour), base.Add(6*hour), model.StatusRejected)
	f.staleWaiting = createTestBooking(t, db, f.item, f.booker, base.Add(-2*hour), base.Add(-90*time.Minute), model.StatusWaiting)
	return f
}

func ids(bookings []model.Booking) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestListBookings_States(t *testing.T) {
	f := newBookingFixture(t)

	tests := []struct {
		state model.BookingState
		want  []*model.Booking // start descending
	}{
		{model.StateAll, []*model.Booking{f.rejected, f.future, f.current, f.staleWaiting, f.past}},
		{model.StateCurrent, []*model.Booking{f.current}},
		{model.StatePast, []*model.Booking{f.staleWaiting, f.past}},
		{model.StateFuture, []*model.Booking{f.rejected, f.future}},
		{model.StateWaiting, []*model.Booking{f.future}},
		{model.StateRejected, []*model.Booking{f.rejected}},
	}

	for _, tt := range tests {
		for _, perspective := range []string{"booker", "owner"} {
			t.Run(string(tt.state)+"/"+perspective, func(t *testing.T) {
				filter := repository.BookingFilter{State: tt.state, Now: base}
				if perspective == "booker" {
					filter.BookerID = f.booker.ID
				} else {
					filter.OwnerID = f.owner.ID
				}

				got, err := f.db.ListBookings(context.Background(), filter, repository.ListOptions{Limit: 10})
				require.NoError(t, err)

				want := make([]int64, 0, len(tt.want))
				for _, b := range tt.want {
					want = append(want, b.ID)
				}
				assert.Equal(t, want, ids(got))

				for _, b := range got {
					assert.True(t, tt.state.Matches(b, base), "booking %d should match %s", b.ID, tt.state)
				}
			})
		}
	}
}

func TestListBookings_OtherUsersSeeNothing(t *testing.T) {
	f := newBookingFixture(t)
	stranger := createTestUser(t, f.db, "cat")

	got, err := f.db.ListBookings(context.Background(),
		repository.BookingFilter{BookerID: stranger.ID, State: model.StateAll, Now: base},
		repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.db.ListBookings(context.Background(),
		repository.BookingFilter{OwnerID: f.booker.ID, State: model.StateAll, Now: base},
		repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListBookings_Pagination(t *testing.T) {
	f := newBookingFixture(t)
	filter := repository.BookingFilter{BookerID: f.booker.ID, State: model.StateAll, Now: base}

	got, err := f.db.ListBookings(context.Background(), filter, repository.Page(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{f.current.ID, f.staleWaiting.ID}, ids(got))

	// from=3 with size=2 falls on the same page as from=2
	got, err = f.db.ListBookings(context.Background(), filter, repository.Page(3, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{f.current.ID, f.staleWaiting.ID}, ids(got))
}

func TestLastAndNextBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	last, err := f.db.LastBooking(ctx, f.item.ID, base)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, f.current.ID, last.ID)
	assert.Equal(t, f.booker.ID, last.BookerID)

	next, err := f.db.NextBooking(ctx, f.item.ID, base)
	require.NoError(t, err)
	require.NotNil(t, next)
	// the rejected booking at +5h is skipped; the waiting one at +3h counts
	assert.Equal(t, f.future.ID, next.ID)
	assert.True(t, last.Start.Before(base))
	assert.True(t, next.Start.After(base))
}

func TestLastAndNextBooking_None(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "ann")
	booker := createTestUser(t, db, "bob")
	item := createTestItem(t, db, owner, "drill", true)
	createTestBooking(t, db, item, booker, base.Add(hour), base.Add(2*hour), model.StatusRejected)

	last, err := db.LastBooking(context.Background(), item.ID, base)
	require.NoError(t, err)
	assert.Nil(t, last)

	next, err := db.NextBooking(context.Background(), item.ID, base)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestLatestFinishedBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	b, err := f.db.LatestFinishedBooking(ctx, f.booker.ID, f.item.ID, base)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, f.staleWaiting.ID, b.ID)

	b, err = f.db.LatestFinishedBooking(ctx, f.owner.ID, f.item.ID, base)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = f.db.LatestFinishedBooking(ctx, f.booker.ID, f.item.ID, base.Add(-6*hour))
	require.NoError(t, err)
	assert.Nil(t, b)
}
