package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
)

type commentRow struct {
	ID         int64  `db:"id"`
	Text       string `db:"text"`
	ItemID     int64  `db:"item_id"`
	AuthorID   int64  `db:"author_id"`
	AuthorName string `db:"author_name"`
	Created    int64  `db:"created"`
}

// CreateComment stores the comment and fills in ID and AuthorName.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, toNanos(comment.Created),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Conflict("comment refers to an unknown item or author")
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	comment.ID = id

	if err := sqlx.GetContext(ctx, db.q, &comment.AuthorName,
		`SELECT name FROM users WHERE id = ?`, comment.AuthorID); err != nil {
		return fmt.Errorf("sqlite: reading comment author: %w", err)
	}
	return nil
}

// ListCommentsByItem returns the item's comments, oldest first.
func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]model.Comment, error) {
	var rows []commentRow
	err := sqlx.SelectContext(ctx, db.q, &rows,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.item_id = ?
		 ORDER BY c.created, c.id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of item %d: %w", itemID, err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, model.Comment{
			ID:         r.ID,
			Text:       r.Text,
			ItemID:     r.ItemID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Created:    fromNanos(r.Created),
		})
	}
	return comments, nil
}
