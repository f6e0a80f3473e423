package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/avandermeer/stock-ledger-backend/internal/analytics"
	"github.com/avandermeer/stock-ledger-backend/internal/api"
	"github.com/avandermeer/stock-ledger-backend/internal/config"
	"github.com/avandermeer/stock-ledger-backend/internal/database"
	"github.com/avandermeer/stock-ledger-backend/internal/marketdata"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
	"github.com/avandermeer/stock-ledger-backend/internal/scheduler"
	"github.com/avandermeer/stock-ledger-backend/internal/service"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	portfolioRepo := repository.NewPortfolioRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	stockListRepo := repository.NewStockListRepository(db)
	listHoldingRepo := repository.NewListHoldingRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	feed := marketdata.NewClient(cfg.MarketData.BaseURL)
	if cfg.MarketData.FernetKey != "" {
		creds, err := marketdata.NewCredentials(settingRepo, cfg.MarketData.FernetKey)
		if err != nil {
			log.Fatal("invalid feed credential key", zap.Error(err))
		}
		token, err := creds.Token(context.Background())
		if err != nil {
			log.Fatal("failed to load feed token", zap.Error(err))
		}
		if token != "" {
			feed = feed.WithToken(token)
		}
	}

	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(db, portfolioRepo, investmentRepo, priceRepo)
	listService := service.NewListService(db, stockListRepo, listHoldingRepo, service.NewOwnerOrPublicAccess(stockListRepo))
	priceService := service.NewPriceService(priceRepo, investmentRepo, listHoldingRepo, feed, cfg.MarketData.Range)
	engine := analytics.NewEngine(priceRepo)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(priceService, cfg.Scheduler.CronSpec, log)
		if err != nil {
			log.Fatal("failed to create scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	router := api.NewRouter(systemService, ledgerService, listService, priceService, engine, cfg, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
