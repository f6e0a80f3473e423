package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/api/response"
	"github.com/avandermeer/stock-ledger-backend/internal/validation"
)

// AnalyticsHandler exposes the read-only statistics engine.
type AnalyticsHandler struct {
	engine *analytics.Engine
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(engine *analytics.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine}
}

// SignalResponse is one mean-reversion data point.
type SignalResponse struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	ZScore float64   `json:"z_score"`
	Action string    `json:"action"`
}

// ForecastPointResponse is one forward price estimate.
type ForecastPointResponse struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PairwiseEntryResponse is the metric for one symbol pair.
type PairwiseEntryResponse struct {
	SymbolA      string  `json:"symbol_a"`
	SymbolB      string  `json:"symbol_b"`
	Value        float64 `json:"value"`
	Observations int     `json:"observations"`
}

// Signals returns mean-reversion signals for a symbol.
// Query params: window (optional, default 15).
func (h *AnalyticsHandler) Signals(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	window := 0
	if v := r.URL.Query().Get("window"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid window", nil)
			return
		}
		window = parsed
	}

	signals, err := h.engine.SignalsFor(r.Context(), symbol, window)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]SignalResponse, len(signals))
	for i, s := range signals {
		resp[i] = SignalResponse{Date: s.Date, Close: s.Close, ZScore: s.ZScore, Action: string(s.Action)}
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Forecast returns forward price points for a symbol.
// Query params: days (required, > 0).
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid days", nil)
		return
	}

	points, err := h.engine.ForecastFor(r.Context(), symbol, days)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]ForecastPointResponse, len(points))
	for i, p := range points {
		resp[i] = ForecastPointResponse{Date: p.Date, Price: p.Price}
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Beta returns the beta of a symbol against a market symbol.
// Query params: market (required).
func (h *AnalyticsHandler) Beta(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	market := r.URL.Query().Get("market")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := validation.ValidateSymbol(market); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	beta, err := h.engine.BetaFor(r.Context(), symbol, market)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]float64{"beta": beta})
}

// Matrix returns the pairwise metric matrix for a comma-separated symbol set.
// Query params: symbols (required), metric (correlation|covariance, default correlation).
func (h *AnalyticsHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		response.RespondError(w, http.StatusBadRequest, "symbols parameter is required", nil)
		return
	}
	symbols := strings.Split(raw, ",")
	for _, s := range symbols {
		if err := validation.ValidateSymbol(s); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	metric := analytics.MetricCorrelation
	if v := r.URL.Query().Get("metric"); v != "" {
		metric = analytics.PairMetric(v)
		if metric != analytics.MetricCorrelation && metric != analytics.MetricCovariance {
			response.RespondError(w, http.StatusBadRequest, "metric must be correlation or covariance", nil)
			return
		}
	}

	entries, err := h.engine.PairwiseMatrix(r.Context(), symbols, metric)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]PairwiseEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = PairwiseEntryResponse{
			SymbolA:      e.SymbolA,
			SymbolB:      e.SymbolB,
			Value:        e.Value,
			Observations: e.Observations,
		}
	}
	response.RespondJSON(w, http.StatusOK, resp)
}
