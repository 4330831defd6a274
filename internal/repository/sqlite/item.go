package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

func (db *DB) CreateItem(ctx context.Context, item *model.Item) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id)
		 VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Conflict("item refers to an unknown owner or request")
		}
		return fmt.Errorf("sqlite: creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading item id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	err := sqlx.GetContext(ctx, db.q, &item,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("item", id)
		}
		return nil, fmt.Errorf("sqlite: getting item %d: %w", id, err)
	}
	return &item, nil
}

// UpdateItem writes name, description and availability. Owner and request
// link are immutable and not touched.
func (db *DB) UpdateItem(ctx context.Context, item *model.Item) error {
	result, err := db.q.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating item %d: %w", item.ID, err)
	}
	return requireRow(result, "item", item.ID)
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Conflict(fmt.Sprintf("item %d still has bookings or comments", id))
		}
		return fmt.Errorf("sqlite: deleting item %d: %w", id, err)
	}
	return requireRow(result, "item", id)
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) ([]model.Item, error) {
	limit, offset := limitArgs(opts)
	items := []model.Item{}
	err := sqlx.SelectContext(ctx, db.q, &items,
		`SELECT `+itemColumns+` FROM items
		 WHERE owner_id = ?
		 ORDER BY id
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

// SearchItems uses instr over casefold()ed columns, so text needs no LIKE
// escaping and matching is Unicode case-insensitive.
func (db *DB) SearchItems(ctx context.Context, text string, opts repository.ListOptions) ([]model.Item, error) {
	needle := strings.ToLower(text)
	limit, offset := limitArgs(opts)
	items := []model.Item{}
	err := sqlx.SelectContext(ctx, db.q, &items,
		`SELECT `+itemColumns+` FROM items
		 WHERE available = 1
		   AND (instr(casefold(name), ?) > 0 OR instr(casefold(description), ?) > 0)
		 ORDER BY id
		 LIMIT ? OFFSET ?`,
		needle, needle, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching items: %w", err)
	}
	return items, nil
}

// ListItemsByRequests returns every item answering any of requestIDs, ordered by id.
func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]model.Item, error) {
	items := []model.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+itemColumns+` FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlite: building request items query: %w", err)
	}
	if err := sqlx.SelectContext(ctx, db.q, &items, db.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing request items: %w", err)
	}
	return items, nil
}
