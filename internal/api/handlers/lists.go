package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/stock-ledger-backend/internal/api/request"
	"github.com/avandermeer/stock-ledger-backend/internal/api/response"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
	"github.com/avandermeer/stock-ledger-backend/internal/validation"
)

// ListHandler handles stock-list HTTP requests.
type ListHandler struct {
	lists *service.ListService
}

// NewListHandler creates a new ListHandler
func NewListHandler(lists *service.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

// StockListResponse represents a stock list in API responses.
type StockListResponse struct {
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}

// ListEntryResponse represents one list holding.
type ListEntryResponse struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// StockListDetailResponse is the GetList read model.
type StockListDetailResponse struct {
	StockListResponse
	Holdings []ListEntryResponse `json:"holdings"`
}

// Mine returns the acting owner's lists.
func (h *ListHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	lists, err := h.lists.ListsOf(r.Context(), identity.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]StockListResponse, len(lists))
	for i, l := range lists {
		resp[i] = toListResponse(l)
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Create creates a stock list for the acting owner.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateName(req.Name); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	l, err := h.lists.CreateList(r.Context(), identity.UserID, req.Name, req.Private)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, toListResponse(l))
}

// Get returns another owner's (or one's own) list, subject to access control.
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	owner := chi.URLParam(r, "owner")
	name := chi.URLParam(r, "name")

	detail, err := h.lists.GetList(r.Context(), identity, owner, name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	holdings := make([]ListEntryResponse, len(detail.Holdings))
	for i, entry := range detail.Holdings {
		holdings[i] = ListEntryResponse{Symbol: entry.Symbol, Shares: entry.Shares}
	}
	response.RespondJSON(w, http.StatusOK, StockListDetailResponse{
		StockListResponse: toListResponse(detail.List),
		Holdings:          holdings,
	})
}

// Delete removes one of the acting owner's lists. Idempotent.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.lists.DeleteList(r.Context(), identity.UserID, chi.URLParam(r, "name")); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SetVisibility flips a list between private and public.
func (h *ListHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.lists.SetVisibility(r.Context(), identity.UserID, chi.URLParam(r, "name"), req.Private); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AddEntry credits shares of a symbol to the list.
func (h *ListHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.ListEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateSymbol(req.Symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	err := h.lists.AddToList(r.Context(), identity.UserID, chi.URLParam(r, "name"), req.Symbol, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RemoveEntry debits shares of a symbol from the list.
func (h *ListHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.ListEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err := h.lists.RemoveSharesFromList(r.Context(), identity.UserID, chi.URLParam(r, "name"), req.Symbol, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// DeleteEntry removes a symbol from the list entirely.
func (h *ListHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	err := h.lists.DeleteFromList(r.Context(), identity.UserID, chi.URLParam(r, "name"), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

func toListResponse(l model.StockList) StockListResponse {
	return StockListResponse{
		Owner:     l.Owner,
		Name:      l.Name,
		Private:   l.Private,
		CreatedAt: l.CreatedAt,
	}
}
