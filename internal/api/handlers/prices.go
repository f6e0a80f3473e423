package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/stock-ledger-backend/internal/api/response"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
	"github.com/avandermeer/stock-ledger-backend/internal/validation"
)

// PriceHandler handles price-bar HTTP requests.
type PriceHandler struct {
	prices *service.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(prices *service.PriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// PriceBarResponse is one daily OHLCV bar.
type PriceBarResponse struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	Low    float64   `json:"low"`
	High   float64   `json:"high"`
	Volume int64     `json:"volume"`
}

// History returns a symbol's stored bars.
// Query params: from, to (YYYY-MM-DD, optional; defaults to trailing year).
func (h *PriceHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(-1, 0, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid from date", nil)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid to date", nil)
			return
		}
		to = parsed
	}

	bars, err := h.prices.History(r.Context(), symbol, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]PriceBarResponse, len(bars))
	for i, b := range bars {
		resp[i] = PriceBarResponse{
			Date:   b.Date,
			Open:   b.Open,
			Close:  b.Close,
			Low:    b.Low,
			High:   b.High,
			Volume: b.Volume,
		}
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Refresh fetches and ingests the latest bars for one symbol.
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.prices.RefreshSymbol(r.Context(), symbol); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}
