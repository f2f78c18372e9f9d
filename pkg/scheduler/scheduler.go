// Package scheduler runs the periodic background passes: subscription
// billing, pre-charge reminders, campaign aggregate recompute and gateway
// event garbage collection. A Redis SETNX lease makes each pass
// single-flight across replicas; the per-subscription claim inside the
// billing pass is the second, finer-grained guard.
package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"givehub-be/internal/config"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/internal/service"
	"givehub-be/pkg/aggregator"
)

type Scheduler struct {
	cfg           config.SchedulerConfig
	subscriptions service.ISubscriptionService
	aggregator    *aggregator.Aggregator
	uowFactory    unitofwork.RepositoryFactory
	redis         *redis.Client
	logger        logger.ILogger
}

func New(
	cfg config.SchedulerConfig,
	subscriptions service.ISubscriptionService,
	agg *aggregator.Aggregator,
	uowFactory unitofwork.RepositoryFactory,
	redisClient *redis.Client,
	log logger.ILogger,
) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		subscriptions: subscriptions,
		aggregator:    agg,
		uowFactory:    uowFactory,
		redis:         redisClient,
		logger:        log,
	}
}

// Start launches all passes. They stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, "billing", s.cfg.BillingInterval, s.billingPass)
	go s.loop(ctx, "reminder", s.cfg.ReminderInterval, s.reminderPass)
	go s.loop(ctx, "recompute", s.cfg.RecomputeInterval, s.recomputePass)
	go s.loop(ctx, "event-gc", 24*time.Hour, s.gcPass)
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, pass func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler", name+" pass stopped", nil)
			return
		case <-ticker.C:
			if !s.acquireLease(ctx, name, interval) {
				continue
			}
			if err := pass(ctx); err != nil {
				s.logger.Error("scheduler", name+" pass failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// acquireLease is the single-flight guard across replicas. The lease
// expires on its own, so a crashed holder never blocks the next tick
// forever. Without Redis the scheduler still runs; a single-instance
// deployment needs no lease.
func (s *Scheduler) acquireLease(ctx context.Context, name string, ttl time.Duration) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, "scheduler:lease:"+name, "1", ttl).Result()
	if err != nil {
		s.logger.Warn("scheduler", "lease acquisition failed, skipping tick", map[string]interface{}{
			"pass":  name,
			"error": err.Error(),
		})
		return false
	}
	return ok
}

func (s *Scheduler) billingPass(ctx context.Context) error {
	return s.subscriptions.ProcessDue(ctx, time.Now(), s.cfg.ClaimExpiry, s.cfg.BatchSize)
}

func (s *Scheduler) reminderPass(ctx context.Context) error {
	return s.subscriptions.SendReminders(ctx, time.Now(), s.cfg.BatchSize)
}

func (s *Scheduler) recomputePass(ctx context.Context) error {
	return s.aggregator.RecomputeAll(ctx)
}

// gcPass trims gateway event dedup rows past the retention window. Their
// only job is short-term replay protection.
func (s *Scheduler) gcPass(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().Add(-s.cfg.EventRetention)
	deleted, err := uow.GatewayEventRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("scheduler", "gateway events garbage collected", map[string]interface{}{"deleted": deleted})
	}
	return nil
}
