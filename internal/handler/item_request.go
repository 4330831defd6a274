package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/shareit/internal/model"
)

// ItemRequestService is what ItemRequestHandler needs from the request catalog.
type ItemRequestService interface {
	Create(ctx context.Context, callerID int64, description string) (*model.ItemRequest, error)
	ListMine(ctx context.Context, callerID int64) ([]model.ItemRequest, error)
	ListOthers(ctx context.Context, callerID int64, from, size int) ([]model.ItemRequest, error)
	Get(ctx context.Context, callerID, requestID int64) (*model.ItemRequest, error)
}

// ItemRequestHandler serves /requests.
type ItemRequestHandler struct {
	requests ItemRequestService
	logger   *slog.Logger
}

func NewItemRequestHandler(requests ItemRequestService, logger *slog.Logger) *ItemRequestHandler {
	return &ItemRequestHandler{requests: requests, logger: logger}
}

type createItemRequestRequest struct {
	Description string `json:"description" validate:"required"`
}

// HTTP: POST /requests
// REQUEST BODY: {"description": "Need a ladder for the weekend"}
func (h *ItemRequestHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req createItemRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	created, err := h.requests.Create(r.Context(), caller, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// HTTP: GET /requests
func (h *ItemRequestHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	reqs, err := h.requests.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// HTTP: GET /requests/all?from=0&size=10
func (h *ItemRequestHandler) HandleListOthers(w http.ResponseWriter, r *http.Request) {
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

	reqs, err := h.requests.ListOthers(r.Context(), caller, from, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// HTTP: GET /requests/{requestId}
func (h *ItemRequestHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	req, err := h.requests.Get(r.Context(), caller, requestID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
