package consumer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/matcher"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// NotifyMeProcessor handles the subscription-based trigger topic. Params
// are validated against the narrower notify-me schemas, not the main
// registry's.
type NotifyMeProcessor struct {
	matcher *matcher.Matcher
	logger  *zap.Logger
}

func NewNotifyMeProcessor(m *matcher.Matcher, logger *zap.Logger) *NotifyMeProcessor {
	return &NotifyMeProcessor{matcher: m, logger: logger}
}

func (p *NotifyMeProcessor) Process(ctx context.Context, msg kafka.Message) error {
	var env domain.EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return errs.Structural("notify-me envelope: %v", err)
	}
	if err := validateEventEnvelope(env.Data); err != nil {
		return err
	}
	if err := schema.ValidateNotifyMe(env.Data.Type, env.Data.Params); err != nil {
		return err
	}

	return p.matcher.Run(ctx, env.Event())
}
