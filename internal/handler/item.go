package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/shareit/internal/model"
	"github.com/sakif/shareit/internal/service"
)

// ItemService is what ItemHandler needs from the item catalog.
type ItemService interface {
	Create(ctx context.Context, callerID int64, in service.NewItem) (*model.Item, error)
	Update(ctx context.Context, callerID, itemID int64, patch model.ItemPatch) (*model.Item, error)
	Get(ctx context.Context, callerID, itemID int64) (*model.ItemDetails, error)
	ListMine(ctx context.Context, callerID int64, from, size int) ([]model.ItemDetails, error)
	Delete(ctx context.Context, itemID int64) error
	Search(ctx context.Context, text string, from, size int) ([]model.Item, error)
}

// CommentService is what ItemHandler needs to accept feedback.
type CommentService interface {
	Create(ctx context.Context, callerID, itemID int64, text string) (*model.Comment, error)
}

// ItemHandler serves /items and the comments posted on them.
type ItemHandler struct {
	items    ItemService
	comments CommentService
	logger   *slog.Logger
}

func NewItemHandler(items ItemService, comments CommentService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, comments: comments, logger: logger}
}

type createItemRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available"   validate:"required"`
	RequestID   *int64 `json:"requestId"   validate:"omitempty,gt=0"`
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type createCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleCreate lists a new item owned by the caller.
//
// HTTP: POST /items
// REQUEST BODY: {"name": "Drill", "description": "Cordless", "available": true, "requestId": 4}
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.items.Create(r.Context(), caller, service.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HTTP: PATCH /items/{itemId}
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.items.Update(r.Context(), caller, itemID, model.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HTTP: GET /items/{itemId}
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.items.Get(r.Context(), caller, itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HTTP: GET /items?from=0&size=10
func (h *ItemHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	from, size, err := page(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.items.ListMine(r.Context(), caller, from, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HTTP: DELETE /items/{itemId}
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.items.Delete(r.Context(), itemID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleSearch matches available items by name or description.
//
// HTTP: GET /items/search?text=drill&from=0&size=10
func (h *ItemHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	from, size, err := page(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleComment posts feedback from a past borrower.
//
// HTTP: POST /items/{itemId}/comment
// REQUEST BODY: {"text": "Worked great"}
func (h *ItemHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), caller, itemID, req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
