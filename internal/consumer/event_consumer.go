// Package consumer holds the per-topic message processors. Each is a pure
// process(rawMessage) -> error unit; the queue package's worker loop maps
// the error taxonomy onto ack/nack.
package consumer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/matcher"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/registry"
)

// EventProcessor is the inbound entry point: envelope validation, then
// params validation, then dispatch — in that order, so a bad message never
// reaches handler logic.
type EventProcessor struct {
	deps     handlers.Deps
	producer matcher.OutputEnqueuer
	logger   *zap.Logger
}

func NewEventProcessor(deps handlers.Deps, producer matcher.OutputEnqueuer, logger *zap.Logger) *EventProcessor {
	return &EventProcessor{deps: deps, producer: producer, logger: logger}
}

func (p *EventProcessor) Process(ctx context.Context, msg kafka.Message) error {
	var env domain.EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return errs.Structural("event envelope: %v", err)
	}
	if err := validateEventEnvelope(env.Data); err != nil {
		return err
	}

	event := env.Event()
	out, err := registry.Dispatch(ctx, event, p.deps)
	if err != nil {
		return err
	}

	p.logger.Info("event dispatched",
		zap.String("type", string(event.Type)),
		zap.String("innovation_id", event.InnovationID),
		zap.Int("emails", len(out.Emails)),
		zap.Int("in_app", len(out.InApp)))

	return p.producer.EnqueueOutput(ctx, out, event.RequestUser.ID)
}

func validateEventEnvelope(d domain.EventEnvelopeData) error {
	if d.Type == "" {
		return errs.Structural("event envelope: missing type")
	}
	if d.InnovationID == "" {
		return errs.Structural("event envelope: missing innovationId")
	}
	if d.RequestUser.ID == "" || d.RequestUser.CurrentRole.ID == "" {
		return errs.Structural("event envelope: missing requestUser")
	}
	return nil
}
