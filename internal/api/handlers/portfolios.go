package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avandermeer/stock-ledger-backend/internal/api/request"
	"github.com/avandermeer/stock-ledger-backend/internal/api/response"
	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
	"github.com/avandermeer/stock-ledger-backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	ledger *service.LedgerService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(ledger *service.LedgerService) *PortfolioHandler {
	return &PortfolioHandler{ledger: ledger}
}

// PortfolioResponse represents a portfolio in API responses.
type PortfolioResponse struct {
	Name      string    `json:"name"`
	Cash      string    `json:"cash"`
	CreatedAt time.Time `json:"created_at"`
}

// HoldingResponse represents one priced holding.
type HoldingResponse struct {
	Symbol      string  `json:"symbol"`
	Shares      int64   `json:"shares"`
	LatestClose float64 `json:"latest_close"`
	Value       string  `json:"value"`
}

// PortfolioDetailResponse is the GetPortfolio read model.
type PortfolioDetailResponse struct {
	Name        string            `json:"name"`
	Cash        string            `json:"cash"`
	CreatedAt   time.Time         `json:"created_at"`
	Holdings    []HoldingResponse `json:"holdings"`
	MarketValue string            `json:"market_value"`
}

// TradeReceiptResponse describes a committed buy or sell.
type TradeReceiptResponse struct {
	Symbol        string    `json:"symbol"`
	Shares        int64     `json:"shares"`
	PricePerShare string    `json:"price_per_share"`
	TotalAmount   string    `json:"total_amount"`
	CashAfter     string    `json:"cash_after"`
	ExecutedAt    time.Time `json:"executed_at"`
}

// List returns the acting owner's portfolios.
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	portfolios, err := h.ledger.ListPortfolios(r.Context(), identity.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]PortfolioResponse, len(portfolios))
	for i, p := range portfolios {
		resp[i] = PortfolioResponse{Name: p.Name, Cash: p.Cash.String(), CreatedAt: p.CreatedAt}
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Create creates a portfolio with an initial deposit.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateName(req.Name); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	deposit, err := decimal.NewFromString(req.InitialDeposit)
	if err != nil {
		respondServiceError(w, apperrors.ErrInvalidAmount)
		return
	}

	p, err := h.ledger.CreatePortfolio(r.Context(), identity.UserID, req.Name, deposit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, PortfolioResponse{
		Name:      p.Name,
		Cash:      p.Cash.String(),
		CreatedAt: p.CreatedAt,
	})
}

// Get returns one portfolio with priced holdings.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	detail, err := h.ledger.GetPortfolio(r.Context(), identity.UserID, chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// Delete removes a portfolio. Idempotent.
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeletePortfolio(r.Context(), identity.UserID, chi.URLParam(r, "name")); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Buy executes a market buy in the portfolio.
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.ledger.BuyShares)
}

// Sell executes a market sell in the portfolio.
func (h *PortfolioHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.ledger.SellShares)
}

func (h *PortfolioHandler) trade(
	w http.ResponseWriter,
	r *http.Request,
	exec func(ctx context.Context, owner, portfolio, symbol string, quantity int64) (model.TradeReceipt, error),
) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateSymbol(req.Symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	receipt, err := exec(r.Context(), identity.UserID, chi.URLParam(r, "name"), req.Symbol, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, TradeReceiptResponse{
		Symbol:        receipt.Symbol,
		Shares:        receipt.Shares,
		PricePerShare: receipt.PricePerShare.String(),
		TotalAmount:   receipt.TotalAmount.String(),
		CashAfter:     receipt.CashAfter.String(),
		ExecutedAt:    receipt.ExecutedAt,
	})
}

// Deposit credits cash to the portfolio.
func (h *PortfolioHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondServiceError(w, apperrors.ErrInvalidAmount)
		return
	}

	if err := h.ledger.DepositCash(r.Context(), identity.UserID, chi.URLParam(r, "name"), amount); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Transfer moves cash between two of the owner's portfolios.
func (h *PortfolioHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req request.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondServiceError(w, apperrors.ErrInvalidAmount)
		return
	}

	err = h.ledger.TransferCash(r.Context(), identity.UserID, req.FromPortfolio, req.ToPortfolio, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

func toDetailResponse(detail model.PortfolioDetail) PortfolioDetailResponse {
	holdings := make([]HoldingResponse, len(detail.Holdings))
	for i, h := range detail.Holdings {
		holdings[i] = HoldingResponse{
			Symbol:      h.Symbol,
			Shares:      h.Shares,
			LatestClose: h.LatestClose,
			Value:       h.Value.String(),
		}
	}
	return PortfolioDetailResponse{
		Name:        detail.Portfolio.Name,
		Cash:        detail.Portfolio.Cash.String(),
		CreatedAt:   detail.Portfolio.CreatedAt,
		Holdings:    holdings,
		MarketValue: detail.MarketValue.String(),
	}
}
