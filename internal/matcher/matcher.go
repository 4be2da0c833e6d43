// Package matcher implements the notify-me dispatch path: subscriptions
// opt users in to future events by type and field preconditions, delivered
// instantly or deferred through scheduled notifications.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/repository"
)

// OutputEnqueuer pushes one handler run's payloads to the outbound topics.
type OutputEnqueuer interface {
	EnqueueOutput(ctx context.Context, out *handlers.Output, requestUserID string) error
}

// Matcher routes one notify-me trigger to the surviving subscriptions.
type Matcher struct {
	repo     repository.SubscriptionRepository
	deps     handlers.Deps
	producer OutputEnqueuer
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo repository.SubscriptionRepository, deps handlers.Deps, producer OutputEnqueuer, logger *zap.Logger) *Matcher {
	return &Matcher{
		repo:     repo,
		deps:     deps,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Matches applies the precondition filter: every field present in both the
// subscription's preconditions and the event params must have its value
// (every element, for array-valued fields) inside the allowed set. Fields
// absent from the event are not constrained; a subscription with no
// preconditions matches every event of its type.
func Matches(sub *domain.Subscription, params map[string]any) bool {
	for field, allowed := range sub.Config.PreConditions {
		value, present := params[field]
		if !present {
			continue
		}
		values, ok := eventValues(value)
		if !ok {
			return false
		}
		for _, v := range values {
			if !allowed.Contains(v) {
				return false
			}
		}
	}
	return true
}

func eventValues(v any) ([]string, bool) {
	switch value := v.(type) {
	case string:
		return []string{value}, true
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return value, true
	case bool, float64, int:
		return []string{fmt.Sprint(value)}, true
	default:
		return nil, false
	}
}

// Run loads the candidate subscriptions for the event's innovation and
// type, filters them, and per surviving subscription either enqueues
// payloads immediately or persists a scheduled notification. Payloads for
// deferred modes are deliberately NOT built here: recipient data may change
// before send, so construction waits for the sweep.
func (m *Matcher) Run(ctx context.Context, event domain.Event) error {
	params, err := event.ParamsMap()
	if err != nil {
		return errs.Structural("notify-me params: %v", err)
	}

	candidates, err := m.repo.FindCandidates(ctx, event.InnovationID, event.Type)
	if err != nil {
		return err
	}

	for _, sub := range candidates {
		if !Matches(sub, params) {
			continue
		}

		switch sub.Config.SubscriptionType {
		case domain.SubscriptionInstantly:
			if err := m.dispatchInstant(ctx, event, sub); err != nil {
				return err
			}

		case domain.SubscriptionPeriodic:
			if err := m.repo.UpsertScheduled(ctx, sub.ID, NextPeriodicRun(m.now())); err != nil {
				return err
			}

		case domain.SubscriptionScheduled:
			if sub.Config.SendDate == nil {
				m.logger.Warn("scheduled subscription without a send date, skipping",
					zap.String("subscription_id", sub.ID))
				continue
			}
			// A date already behind us would persist a row no sweep window
			// will ever select.
			if !sub.Config.SendDate.After(m.now()) {
				m.logger.Warn("scheduled subscription date already passed, skipping",
					zap.String("subscription_id", sub.ID),
					zap.Time("send_date", *sub.Config.SendDate))
				continue
			}
			if err := m.repo.UpsertScheduled(ctx, sub.ID, *sub.Config.SendDate); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Matcher) dispatchInstant(ctx context.Context, event domain.Event, sub *domain.Subscription) error {
	out, err := BuildPayloads(ctx, m.deps, sub, domain.TemplateNotifyMeInstant, event.Type)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// The subscriber's role no longer resolves. Logical, not
			// transient: skip this subscription rather than fail the event.
			m.logger.Warn("notify-me subscriber no longer resolves, skipping",
				zap.String("subscription_id", sub.ID),
				zap.String("user_role_id", sub.UserRoleID))
			return nil
		}
		return err
	}
	return m.producer.EnqueueOutput(ctx, out, event.RequestUser.ID)
}

// NextPeriodicRun returns the next daily digest boundary (07:00 UTC)
// strictly after t.
func NextPeriodicRun(t time.Time) time.Time {
	t = t.UTC()
	run := time.Date(t.Year(), t.Month(), t.Day(), 7, 0, 0, 0, time.UTC)
	if !run.After(t) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}
