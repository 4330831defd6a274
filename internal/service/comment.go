package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
	"github.com/sakif/shareit/internal/sanitize"
)

// CommentService lets past borrowers leave feedback on an item.
type CommentService struct {
	store  repository.Store
	clock  clock.Clock
	logger *slog.Logger
}

func NewCommentService(store repository.Store, clk clock.Clock, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Create stores a comment by the caller on itemID. The caller must have a
// booking of the item that ended before now; its status does not matter.
// Unknown callers and items are reported before problems with the text.
func (s *CommentService) Create(ctx context.Context, callerID, itemID int64, text string) (*model.Comment, error) {
	now := s.clock.Now()

	var comment *model.Comment
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := r.GetUserByID(ctx, callerID); err != nil {
			return err
		}
		if _, err := r.GetItemByID(ctx, itemID); err != nil {
			return err
		}

		clean, err := validateCommentText(text)
		if err != nil {
			return err
		}

		finished, err := r.LatestFinishedBooking(ctx, callerID, itemID, now)
		if err != nil {
			return fmt.Errorf("checking past bookings: %w", err)
		}
		if finished == nil {
			return apperror.NotAvailable(fmt.Sprintf("user %d has not finished a booking of item %d", callerID, itemID))
		}

		c := &model.Comment{
			Text:     clean,
			ItemID:   itemID,
			AuthorID: callerID,
			Created:  now,
		}
		if err := r.CreateComment(ctx, c); err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("item_id", itemID),
		slog.Int64("author_id", callerID),
	)
	return comment, nil
}

func validateCommentText(text string) (string, error) {
	text, err := sanitize.Text("text", text)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", apperror.ValidationFailed("text", "comment text must not be blank")
	}
	if len(text) > MaxCommentLength {
		return "", apperror.ValidationFailed("text",
			fmt.Sprintf("comment text must be %d characters or less", MaxCommentLength))
	}
	return text, nil
}
