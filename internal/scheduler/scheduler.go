// Package scheduler runs the recurring price refresh job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/avandermeer/stock-ledger-backend/internal/service"
)

// Scheduler wires the daily bar refresh onto a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	prices *service.PriceService
	log    *zap.Logger
}

// New creates a Scheduler running the refresh on the given cron spec.
func New(prices *service.PriceService, cronSpec string, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		prices: prices,
		log:    log,
	}

	if _, err := s.cron.AddFunc(cronSpec, s.refresh); err != nil {
		return nil, fmt.Errorf("failed to register refresh job: %w", err)
	}
	return s, nil
}

// Start begins running scheduled jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	if err := s.prices.RefreshAll(ctx); err != nil {
		s.log.Error("price refresh failed", zap.Error(err))
		return
	}
	s.log.Info("price refresh complete", zap.Duration("took", time.Since(start)))
}
