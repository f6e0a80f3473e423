package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/api"
	"github.com/avandermeer/stock-ledger-backend/internal/config"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
	"github.com/avandermeer/stock-ledger-backend/internal/testutil"
)

// stubFetcher satisfies service.BarFetcher without touching the network.
type stubFetcher struct{}

func (stubFetcher) DailyBars(_ context.Context, _, _ string) ([]model.PriceBar, error) {
	return nil, nil
}

func setupRouter(t *testing.T, db *sql.DB) http.Handler {
	t.Helper()

	priceRepo := repository.NewPriceRepository(db)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost"}},
	}

	return api.NewRouter(
		service.NewSystemService(db),
		testutil.NewTestLedgerService(t, db),
		testutil.NewTestListService(t, db),
		service.NewPriceService(
			priceRepo,
			repository.NewInvestmentRepository(db),
			repository.NewListHoldingRepository(db),
			stubFetcher{},
			"1y",
		),
		analytics.NewEngine(priceRepo),
		cfg,
		zap.NewNop(),
	)
}

func doJSON(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRouter_Identity tests the identity requirement on owner-scoped routes.
//
// WHY: Every portfolio and list route acts as the X-User-ID the gateway
// resolved. A request without one must be rejected before any state is read.
func TestRouter_Identity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := setupRouter(t, db)

	w := doJSON(t, router, http.MethodGet, "/api/portfolio/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without identity, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/portfolio/", "alice", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with identity, got %d", w.Code)
	}
}

// TestRouter_PortfolioLifecycle tests the portfolio endpoints end to end.
//
// WHY: The HTTP layer translates service errors into status codes the
// frontend depends on: 201 on create, 409 on a duplicate name, 422 on an
// underfunded trade, 404 on a missing resource.
func TestRouter_PortfolioLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := setupRouter(t, db)

	t.Run("create returns 201", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/portfolio/", "alice", map[string]any{
			"name":            "Growth",
			"initial_deposit": "1000",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Name string `json:"name"`
			Cash string `json:"cash"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Name != "Growth" || resp.Cash != "1000" {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("duplicate name returns 409", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/portfolio/", "alice", map[string]any{
			"name":            "Growth",
			"initial_deposit": "0",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d", w.Code)
		}
	})

	t.Run("buy debits cash", func(t *testing.T) {
		testutil.SeedBars(t, db, "AAPL", []float64{50})

		w := doJSON(t, router, http.MethodPost, "/api/portfolio/Growth/buy", "alice", map[string]any{
			"symbol":   "AAPL",
			"quantity": 10,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var receipt struct {
			TotalAmount string `json:"total_amount"`
			CashAfter   string `json:"cash_after"`
		}
		if err := json.NewDecoder(w.Body).Decode(&receipt); err != nil {
			t.Fatalf("Failed to decode receipt: %v", err)
		}
		if receipt.TotalAmount != "500" || receipt.CashAfter != "500" {
			t.Errorf("Unexpected receipt: %+v", receipt)
		}
	})

	t.Run("underfunded buy returns 422", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/portfolio/Growth/buy", "alice", map[string]any{
			"symbol":   "AAPL",
			"quantity": 1000,
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", w.Code)
		}
	})

	t.Run("missing portfolio returns 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/portfolio/Missing/", "alice", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("owners are isolated", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/portfolio/Growth/", "bob", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for another owner's portfolio, got %d", w.Code)
		}
	})
}

// TestRouter_SharedLists tests the shared-list route.
//
// WHY: Viewing someone else's list is the one cross-owner read in the API
// and must honor the visibility flag: 403 on private, 200 on public.
func TestRouter_SharedLists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := setupRouter(t, db)

	testutil.NewStockList().WithName("Secret").Build(t, db)
	testutil.NewStockList().WithName("Picks").Public().Build(t, db)

	t.Run("private list is 403 for a stranger", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/list/shared/alice/Secret", "bob", nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", w.Code)
		}
	})

	t.Run("public list is 200 for a stranger", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/list/shared/alice/Picks", "bob", nil)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing list is indistinguishable from private", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/list/shared/alice/Nothing", "bob", nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for a missing list, got %d", w.Code)
		}
	})
}

// TestRouter_Analytics tests the analytics endpoints.
//
// WHY: The analytics routes are read-only and unauthenticated; their error
// mapping (400 for statistical refusals, 404 for unknown symbols) is part
// of the API contract.
func TestRouter_Analytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := setupRouter(t, db)

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	testutil.SeedBars(t, db, "AAPL", closes)

	t.Run("signals returns one point per classified bar", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/analytics/signals/AAPL?window=5", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var signals []struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(w.Body).Decode(&signals); err != nil {
			t.Fatalf("Failed to decode signals: %v", err)
		}
		if len(signals) != 16 {
			t.Errorf("Expected 16 signals for 20 bars at window 5, got %d", len(signals))
		}
	})

	t.Run("unknown symbol returns 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/analytics/signals/NOPE?window=5", "", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("forecast with too little history returns 400", func(t *testing.T) {
		testutil.SeedBars(t, db, "NEW", []float64{10, 11, 12})

		w := doJSON(t, router, http.MethodGet, "/api/analytics/forecast/NEW?days=5", "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("matrix covers each pair once", func(t *testing.T) {
		second := make([]float64, 20)
		for i := range second {
			second[i] = 200 - float64(i%7)
		}
		testutil.SeedBars(t, db, "MSFT", second)

		w := doJSON(t, router, http.MethodGet,
			"/api/analytics/matrix?symbols=AAPL,MSFT&metric=correlation", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var entries []struct {
			SymbolA string `json:"symbol_a"`
			SymbolB string `json:"symbol_b"`
		}
		if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
			t.Fatalf("Failed to decode matrix: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 pair, got %d", len(entries))
		}
	})
}

// TestRouter_System tests the system endpoints.
//
// WHY: /health backs the deployment probe; it must be reachable without an
// identity header.
func TestRouter_System(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := setupRouter(t, db)

	w := doJSON(t, router, http.MethodGet, "/api/system/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from health, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/system/version", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from version, got %d", w.Code)
	}
}
