// Package scheduler re-delivers due scheduled notifications. The grace
// window bounds how late a missed notification may still go out: a sweep
// outage shorter than the window loses nothing, a longer one intentionally
// drops very stale rows instead of bursting backlog.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/matcher"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/repository"
)

type SweepWorker struct {
	repo     repository.SubscriptionRepository
	deps     handlers.Deps
	producer matcher.OutputEnqueuer
	logger   *zap.Logger
	interval time.Duration
	grace    time.Duration
	stopChan chan bool
	now      func() time.Time
}

func NewSweepWorker(
	repo repository.SubscriptionRepository,
	deps handlers.Deps,
	producer matcher.OutputEnqueuer,
	logger *zap.Logger,
	interval, grace time.Duration,
) *SweepWorker {
	return &SweepWorker{
		repo:     repo,
		deps:     deps,
		producer: producer,
		logger:   logger,
		interval: interval,
		grace:    grace,
		stopChan: make(chan bool),
		now:      time.Now,
	}
}

func (sw *SweepWorker) Start(ctx context.Context) {
	sw.logger.Info("Starting scheduled notification sweep",
		zap.Duration("interval", sw.interval),
		zap.Duration("grace_window", sw.grace))

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.RunOnce(ctx)

		case <-sw.stopChan:
			sw.logger.Info("Stopping sweep worker")
			return

		case <-ctx.Done():
			sw.logger.Info("Context cancelled, stopping sweep worker")
			return
		}
	}
}

// RunOnce processes every row due inside the grace window. Rows are deleted
// only after a successful enqueue, so a failure at any step leaves the row
// due for the next cycle; running twice back-to-back with no new rows sends
// nothing the second time.
func (sw *SweepWorker) RunOnce(ctx context.Context) {
	now := sw.now()
	due, err := sw.repo.DueScheduled(ctx, now.Add(-sw.grace), now)
	if err != nil {
		sw.logger.Error("Sweep query failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	sw.logger.Info("Sweep found due notifications", zap.Int("count", len(due)))

	// Role contexts are cached for this run only: the same subscriber role
	// often owns several due rows, and the lookup is the expensive part.
	deps := sw.deps
	deps.Recipients = newContextCache(sw.deps.Recipients)

	for _, d := range due {
		sub := d.Subscription
		out, err := matcher.BuildPayloads(ctx, deps, &sub, domain.TemplateNotifyMeDigest, sub.Config.EventType)
		if err != nil {
			// Skipped this cycle; the row stays due and retries while it
			// remains inside the grace window.
			sw.logger.Warn("Sweep skipping row",
				zap.Error(err),
				zap.String("subscription_id", sub.ID),
				zap.Time("send_date", d.SendDate))
			continue
		}

		if err := sw.producer.EnqueueOutput(ctx, out, ""); err != nil {
			sw.logger.Error("Sweep enqueue failed",
				zap.Error(err),
				zap.String("subscription_id", sub.ID))
			continue
		}

		if err := sw.repo.DeleteScheduled(ctx, sub.ID); err != nil {
			// The enqueue already happened; the worst case on failure here
			// is one redelivery next cycle, which is the chosen bias.
			sw.logger.Error("Sweep delete-after-send failed",
				zap.Error(err),
				zap.String("subscription_id", sub.ID))
		}
	}
}

func (sw *SweepWorker) Stop() {
	close(sw.stopChan)
}

// contextCache memoises DomainContext lookups for one sweep run and is
// discarded with it.
type contextCache struct {
	handlers.RecipientsService
	contexts map[string]*domain.DomainContext
}

func newContextCache(inner handlers.RecipientsService) *contextCache {
	return &contextCache{
		RecipientsService: inner,
		contexts:          make(map[string]*domain.DomainContext),
	}
}

func (c *contextCache) DomainContext(ctx context.Context, roleID string) (*domain.DomainContext, error) {
	if dctx, ok := c.contexts[roleID]; ok {
		return dctx, nil
	}
	dctx, err := c.RecipientsService.DomainContext(ctx, roleID)
	if err != nil {
		return nil, err
	}
	c.contexts[roleID] = dctx
	return dctx, nil
}
