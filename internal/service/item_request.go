package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/repository"
	"github.com/sakif/shareit/internal/sanitize"
)

// ItemRequestService manages requests for items nobody lists yet.
// Every request it returns carries the items created in answer to it.
type ItemRequestService struct {
	repo   repository.Repositories
	clock  clock.Clock
	logger *slog.Logger
}

func NewItemRequestService(repo repository.Repositories, clk clock.Clock, logger *slog.Logger) *ItemRequestService {
	return &ItemRequestService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

func (s *ItemRequestService) Create(ctx context.Context, callerID int64, description string) (*model.ItemRequest, error) {
	description, err := sanitize.Text("description", description)
	if err != nil {
		return nil, err
	}
	if err := validateItemDescription(description); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}

	req := &model.ItemRequest{
		Description: description,
		RequesterID: callerID,
		Created:     s.clock.Now(),
		Items:       []model.Item{},
	}
	if err := s.repo.CreateItemRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("creating item request: %w", err)
	}

	s.logger.Info("item request created",
		slog.Int64("request_id", req.ID),
		slog.Int64("requester_id", callerID),
	)
	return req, nil
}

// ListMine returns all of the caller's requests, newest first.
func (s *ItemRequestService) ListMine(ctx context.Context, callerID int64) ([]model.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListItemRequestsByRequester(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing own item requests: %w", err)
	}
	return s.withItems(ctx, reqs)
}

// ListOthers pages through everybody else's requests, oldest first.
func (s *ItemRequestService) ListOthers(ctx context.Context, callerID int64, from, size int) ([]model.ItemRequest, error) {
	opts, err := pageOptions(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListItemRequestsExcept(ctx, callerID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing item requests: %w", err)
	}
	return s.withItems(ctx, reqs)
}

func (s *ItemRequestService) Get(ctx context.Context, callerID, requestID int64) (*model.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	req, err := s.repo.GetItemRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.withItems(ctx, []model.ItemRequest{*req})
	if err != nil {
		return nil, err
	}
	return &reqs[0], nil
}

// withItems attaches answering items to each request with a single query.
func (s *ItemRequestService) withItems(ctx context.Context, reqs []model.ItemRequest) ([]model.ItemRequest, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}

	items, err := s.repo.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing request items: %w", err)
	}

	byRequest := make(map[int64][]model.Item, len(reqs))
	for _, it := range items {
		if it.RequestID != nil {
			byRequest[*it.RequestID] = append(byRequest[*it.RequestID], it)
		}
	}

	for i := range reqs {
		reqs[i].Items = byRequest[reqs[i].ID]
		if reqs[i].Items == nil {
			reqs[i].Items = []model.Item{}
		}
	}
	return reqs, nil
}
