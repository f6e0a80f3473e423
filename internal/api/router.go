package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/api/handlers"
	custommiddleware "github.com/avandermeer/stock-ledger-backend/internal/api/middleware"
	"github.com/avandermeer/stock-ledger-backend/internal/config"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	ledgerService *service.LedgerService,
	listService *service.ListService,
	priceService *service.PriceService,
	engine *analytics.Engine,
	cfg *config.Config,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.Identity(custommiddleware.HeaderIdentityResolver{}))

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(ledgerService)
			r.Get("/", portfolioHandler.List)
			r.Post("/", portfolioHandler.Create)
			r.Post("/transfer", portfolioHandler.Transfer)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", portfolioHandler.Get)
				r.Delete("/", portfolioHandler.Delete)
				r.Post("/buy", portfolioHandler.Buy)
				r.Post("/sell", portfolioHandler.Sell)
				r.Post("/deposit", portfolioHandler.Deposit)
			})
		})

		r.Route("/list", func(r chi.Router) {
			listHandler := handlers.NewListHandler(listService)
			r.Get("/", listHandler.Mine)
			r.Post("/", listHandler.Create)
			r.Route("/{name}", func(r chi.Router) {
				r.Delete("/", listHandler.Delete)
				r.Put("/visibility", listHandler.SetVisibility)
				r.Post("/entries", listHandler.AddEntry)
				r.Put("/entries", listHandler.RemoveEntry)
				r.Delete("/entries/{symbol}", listHandler.DeleteEntry)
			})
			// Viewing another owner's list goes through access control.
			r.Get("/shared/{owner}/{name}", listHandler.Get)
		})

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(engine)
			r.Get("/signals/{symbol}", analyticsHandler.Signals)
			r.Get("/forecast/{symbol}", analyticsHandler.Forecast)
			r.Get("/beta/{symbol}", analyticsHandler.Beta)
			r.Get("/matrix", analyticsHandler.Matrix)
		})

		r.Route("/price", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(priceService)
			r.Get("/{symbol}", priceHandler.History)
			r.Post("/{symbol}/refresh", priceHandler.Refresh)
		})
	})

	return r
}
