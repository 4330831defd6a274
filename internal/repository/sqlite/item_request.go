package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

type itemRequestRow struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	RequesterID int64  `db:"requester_id"`
	Created     int64  `db:"created"`
}

func (r itemRequestRow) toModel() model.ItemRequest {
	return model.ItemRequest{
		ID:          r.ID,
		Description: r.Description,
		RequesterID: r.RequesterID,
		Created:     fromNanos(r.Created),
	}
}

func itemRequestsFromRows(rows []itemRequestRow) []model.ItemRequest {
	reqs := make([]model.ItemRequest, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.toModel())
	}
	return reqs
}

// CreateItemRequest stores req as given; the caller sets Created.
func (db *DB) CreateItemRequest(ctx context.Context, req *model.ItemRequest) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO item_requests (description, requester_id, created) VALUES (?, ?, ?)`,
		req.Description, req.RequesterID, toNanos(req.Created),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", req.RequesterID)
		}
		return fmt.Errorf("sqlite: creating item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading item request id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetItemRequestByID(ctx context.Context, id int64) (*model.ItemRequest, error) {
	var row itemRequestRow
	err := sqlx.GetContext(ctx, db.q, &row,
		`SELECT id, description, requester_id, created FROM item_requests WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("item request", id)
		}
		return nil, fmt.Errorf("sqlite: getting item request %d: %w", id, err)
	}
	req := row.toModel()
	return &req, nil
}

func (db *DB) ListItemRequestsByRequester(ctx context.Context, requesterID int64) ([]model.ItemRequest, error) {
	var rows []itemRequestRow
	err := sqlx.SelectContext(ctx, db.q, &rows,
		`SELECT id, description, requester_id, created FROM item_requests
		 WHERE requester_id = ?
		 ORDER BY created DESC, id DESC`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing item requests of user %d: %w", requesterID, err)
	}
	return itemRequestsFromRows(rows), nil
}

func (db *DB) ListItemRequestsExcept(ctx context.Context, requesterID int64, opts repository.ListOptions) ([]model.ItemRequest, error) {
	limit, offset := limitArgs(opts)
	var rows []itemRequestRow
	err := sqlx.SelectContext(ctx, db.q, &rows,
		`SELECT id, description, requester_id, created FROM item_requests
		 WHERE requester_id <> ?
		 ORDER BY created, id
		 LIMIT ? OFFSET ?`,
		requesterID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing item requests: %w", err)
	}
	return itemRequestsFromRows(rows), nil
}
