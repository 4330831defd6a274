package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/shareit/internal/apperror"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
	"github.com/sakif/shareit/internal/sanitize"
)

// BookingSummarizer computes the last/next booking annotation of an item.
type BookingSummarizer interface {
	Summaries(ctx context.Context, itemID int64) (last, next *model.BookingSummary, err error)
}

// NewItem is the input for ItemService.Create. Available is a pointer
// because it must be stated explicitly.
type NewItem struct {
	Name        string
	Description string
	Available   *bool
	RequestID   *int64
}

// ItemService manages the item catalog.
type ItemService struct {
	repo      repository.Repositories
	summaries BookingSummarizer
	logger    *slog.Logger
}

func NewItemService(repo repository.Repositories, summaries BookingSummarizer, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:      repo,
		summaries: summaries,
		logger:    logger,
	}
}

// Create lists a new item owned by the caller. A RequestID, if given, must
// name an existing item request.
func (s *ItemService) Create(ctx context.Context, callerID int64, in NewItem) (*model.Item, error) {
	name, err := sanitize.Text("name", in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	description, err := sanitize.Text("description", in.Description)
	if err != nil {
		return nil, err
	}
	if err := validateItemDescription(description); err != nil {
		return nil, err
	}
	if in.Available == nil {
		return nil, apperror.ValidationFailed("available", "available is required")
	}

	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	if in.RequestID != nil {
		if _, err := s.repo.GetItemRequestByID(ctx, *in.RequestID); err != nil {
			return nil, err
		}
	}

	item := &model.Item{
		Name:        name,
		Description: description,
		Available:   *in.Available,
		OwnerID:     callerID,
		RequestID:   in.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.logger.Info("item created",
		slog.Int64("item_id", item.ID),
		slog.Int64("owner_id", item.OwnerID),
	)
	return item, nil
}

// Update applies the non-nil fields of patch. Only the owner may update.
func (s *ItemService) Update(ctx context.Context, callerID, itemID int64, patch model.ItemPatch) (*model.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, apperror.Forbidden("only the owner can update an item")
	}

	if patch.Name != nil {
		name, err := sanitize.Text("name", *patch.Name)
		if err != nil {
			return nil, err
		}
		if err := validateItemName(name); err != nil {
			return nil, err
		}
		item.Name = name
	}
	if patch.Description != nil {
		description, err := sanitize.Text("description", *patch.Description)
		if err != nil {
			return nil, err
		}
		if err := validateItemDescription(description); err != nil {
			return nil, err
		}
		item.Description = description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	s.logger.Info("item updated", slog.Int64("item_id", item.ID))
	return item, nil
}

// Get returns the item with its comments. The last/next booking annotation
// is only filled in for the owner.
func (s *ItemService) Get(ctx context.Context, callerID, itemID int64) (*model.ItemDetails, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, *item, item.OwnerID == callerID)
}

// ListMine pages through the caller's items in id order, each fully annotated.
func (s *ItemService) ListMine(ctx context.Context, callerID int64, from, size int) ([]model.ItemDetails, error) {
	opts, err := pageOptions(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItemsByOwner(ctx, callerID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	out := make([]model.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID int64) error {
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.logger.Info("item deleted", slog.Int64("item_id", itemID))
	return nil
}

// Search finds available items whose name or description contains text,
// ignoring case. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]model.Item, error) {
	opts, err := pageOptions(from, size)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []model.Item{}, nil
	}

	items, err := s.repo.SearchItems(ctx, text, opts)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

func (s *ItemService) details(ctx context.Context, item model.Item, withBookings bool) (*model.ItemDetails, error) {
	d := &model.ItemDetails{Item: item}

	comments, err := s.repo.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	d.Comments = comments

	if withBookings {
		if d.LastBooking, d.NextBooking, err = s.summaries.Summaries(ctx, item.ID); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func validateItemName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name must not be blank")
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	return nil
}

func validateItemDescription(description string) error {
	if description == "" {
		return apperror.ValidationFailed("description", "description must not be blank")
	}
	if len(description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	return nil
}
