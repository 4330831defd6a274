package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

// bookingSelect joins the booked item and the booker so that every booking
// read carries both snapshots without storing them twice.
const bookingSelect = `
SELECT b.id, b.start_at, b.end_at, b.status,
       i.id AS item_id, i.name AS item_name, i.description AS item_description,
       i.available AS item_available, i.owner_id AS item_owner_id, i.request_id AS item_request_id,
       u.id AS booker_id, u.name AS booker_name, u.email AS booker_email
FROM bookings b
JOIN items i ON i.id = b.item_id
JOIN users u ON u.id = b.booker_id`

type bookingRow struct {
	ID              int64  `db:"id"`
	StartAt         int64  `db:"start_at"`
	EndAt           int64  `db:"end_at"`
	Status          string `db:"status"`
	ItemID          int64  `db:"item_id"`
	ItemName        string `db:"item_name"`
	ItemDescription string `db:"item_description"`
	ItemAvailable   bool   `db:"item_available"`
	ItemOwnerID     int64  `db:"item_owner_id"`
	ItemRequestID   *int64 `db:"item_request_id"`
	BookerID        int64  `db:"booker_id"`
	BookerName      string `db:"booker_name"`
	BookerEmail     string `db:"booker_email"`
}

func (r bookingRow) toModel() model.Booking {
	return model.Booking{
		ID:     r.ID,
		Start:  fromNanos(r.StartAt),
		End:    fromNanos(r.EndAt),
		Status: model.BookingStatus(r.Status),
		Item: model.Item{
			ID:          r.ItemID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			OwnerID:     r.ItemOwnerID,
			RequestID:   r.ItemRequestID,
		},
		Booker: model.User{
			ID:    r.BookerID,
			Name:  r.BookerName,
			Email: r.BookerEmail,
		},
	}
}

type summaryRow struct {
	ID       int64 `db:"id"`
	BookerID int64 `db:"booker_id"`
	StartAt  int64 `db:"start_at"`
	EndAt    int64 `db:"end_at"`
}

// CreateBooking inserts the booking and reloads it so that the item and
// booker snapshots are filled in.
func (db *DB) CreateBooking(ctx context.Context, booking *model.Booking) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO bookings (start_at, end_at, item_id, booker_id, status)
		 VALUES (?, ?, ?, ?, ?)`,
		toNanos(booking.Start), toNanos(booking.End),
		booking.Item.ID, booking.Booker.ID, string(booking.Status),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Conflict("booking refers to an unknown item or booker")
		}
		return fmt.Errorf("sqlite: creating booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading booking id: %w", err)
	}

	stored, err := db.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	*booking = *stored
	return nil
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*model.Booking, error) {
	var row bookingRow
	err := sqlx.GetContext(ctx, db.q, &row, bookingSelect+` WHERE b.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("booking", id)
		}
		return nil, fmt.Errorf("sqlite: getting booking %d: %w", id, err)
	}
	b := row.toModel()
	return &b, nil
}

// UpdateBookingStatus only writes when the stored status still equals from,
// so of two racing decisions exactly one changes the row.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, from, to model.BookingStatus) error {
	result, err := db.q.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating booking %d status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, db.q, &exists,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = ?)`, id); err != nil {
		return fmt.Errorf("sqlite: checking booking %d: %w", id, err)
	}
	if !exists {
		return apperror.NotFound("booking", id)
	}
	return apperror.NotAvailable(fmt.Sprintf("booking %d is no longer %s", id, from))
}

// ListBookings translates the filter's state into SQL over the stored
// instants. The predicates mirror model.BookingState.Matches.
func (db *DB) ListBookings(ctx context.Context, filter repository.BookingFilter, opts repository.ListOptions) ([]model.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.BookerID != 0 {
		conds = append(conds, "b.booker_id = ?")
		args = append(args, filter.BookerID)
	}
	if filter.OwnerID != 0 {
		conds = append(conds, "i.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.ItemID != 0 {
		conds = append(conds, "b.item_id = ?")
		args = append(args, filter.ItemID)
	}

	now := toNanos(filter.Now)
	switch filter.State {
	case model.StateAll, "":
	case model.StateCurrent:
		conds = append(conds, "b.start_at < ? AND b.end_at > ?")
		args = append(args, now, now)
	case model.StatePast:
		conds = append(conds, "b.end_at < ?")
		args = append(args, now)
	case model.StateFuture:
		conds = append(conds, "b.start_at > ?")
		args = append(args, now)
	case model.StateWaiting:
		conds = append(conds, "b.start_at > ? AND b.status = ?")
		args = append(args, now, string(model.StatusWaiting))
	case model.StateRejected:
		conds = append(conds, "b.status = ?")
		args = append(args, string(model.StatusRejected))
	default:
		return nil, fmt.Errorf("sqlite: unsupported booking state %q", filter.State)
	}

	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.start_at DESC, b.id DESC LIMIT ? OFFSET ?"
	limit, offset := limitArgs(opts)
	args = append(args, limit, offset)

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toModel())
	}
	return bookings, nil
}

func (db *DB) LastBooking(ctx context.Context, itemID int64, now time.Time) (*model.BookingSummary, error) {
	return db.summary(ctx,
		`SELECT id, booker_id, start_at, end_at FROM bookings
		 WHERE item_id = ? AND status <> 'REJECTED' AND start_at < ?
		 ORDER BY start_at DESC, id DESC
		 LIMIT 1`,
		itemID, toNanos(now))
}

func (db *DB) NextBooking(ctx context.Context, itemID int64, now time.Time) (*model.BookingSummary, error) {
	return db.summary(ctx,
		`SELECT id, booker_id, start_at, end_at FROM bookings
		 WHERE item_id = ? AND status <> 'REJECTED' AND start_at > ?
		 ORDER BY start_at, id
		 LIMIT 1`,
		itemID, toNanos(now))
}

func (db *DB) summary(ctx context.Context, query string, args ...any) (*model.BookingSummary, error) {
	var row summaryRow
	if err := sqlx.GetContext(ctx, db.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: reading booking summary: %w", err)
	}
	return &model.BookingSummary{
		ID:       row.ID,
		BookerID: row.BookerID,
		Start:    fromNanos(row.StartAt),
		End:      fromNanos(row.EndAt),
	}, nil
}

func (db *DB) LatestFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (*model.Booking, error) {
	var row bookingRow
	err := sqlx.GetContext(ctx, db.q, &row,
		bookingSelect+`
		 WHERE b.booker_id = ? AND b.item_id = ? AND b.end_at < ?
		 ORDER BY b.end_at DESC, b.id DESC
		 LIMIT 1`,
		bookerID, itemID, toNanos(now),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: finding finished booking: %w", err)
	}
	b := row.toModel()
	return &b, nil
}
