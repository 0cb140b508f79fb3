// Package scheduler registers the periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"cursapp/logger"
	"cursapp/services"
	"cursapp/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	ExchangeRateSpec    = "0 */6 * * *"
	PendingExpirySpec   = "0 * * * *"
	PointsAuditSpec     = "0 3 * * *"
	jobTimeout          = 30 * time.Second
	defaultPendingHours = 48
)

type Scheduler struct {
	db         *gorm.DB
	rates      *utils.ExchangeRateClient
	pendingTTL time.Duration
	cron       *cron.Cron
}

func New(db *gorm.DB, rates *utils.ExchangeRateClient, pendingTTLHours int) *Scheduler {
	if pendingTTLHours <= 0 {
		pendingTTLHours = defaultPendingHours
	}
	return &Scheduler{
		db:         db,
		rates:      rates,
		pendingTTL: time.Duration(pendingTTLHours) * time.Hour,
		cron:       cron.New(),
	}
}

// Start registers every job and starts the cron runner.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{ExchangeRateSpec, "exchange-rate refresh", s.RefreshExchangeRate},
		{PendingExpirySpec, "pending enrollment expiry", s.ExpirePendingEnrollments},
		{PointsAuditSpec, "points audit", s.AuditPoints},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return err
		}
		logger.L().Info("[SCHEDULER] job registered", "job", j.name, "spec", j.spec)
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.L().Info("[SCHEDULER] stopped")
}

func (s *Scheduler) RefreshExchangeRate() {
	if s.rates == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	rate, err := s.rates.Refresh(ctx)
	if err != nil {
		logger.L().Error("[RATE-SCHEDULER] refresh failed", "error", err)
		return
	}
	logger.L().Info("[RATE-SCHEDULER] exchange rate refreshed", "rate", rate.String())
}

func (s *Scheduler) ExpirePendingEnrollments() {
	n, err := services.ExpireStalePendingEnrollments(s.db, time.Now(), s.pendingTTL)
	if err != nil {
		logger.L().Error("[ENROLLMENT-SCHEDULER] expiry failed", "error", err)
		return
	}
	if n > 0 {
		logger.L().Info("[ENROLLMENT-SCHEDULER] stale pending enrollments failed", "count", n)
	}
}

func (s *Scheduler) AuditPoints() {
	drift, err := services.AuditPointTotals(s.db)
	if err != nil {
		logger.L().Error("[POINTS-SCHEDULER] audit failed", "error", err)
		return
	}
	logger.L().Info("[POINTS-SCHEDULER] audit finished", "mismatches", len(drift))
}
