package consumer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/repository"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/notifier/ws"
)

// InAppProcessor persists one read/unread record per target role and
// pushes the record to any live websocket connections for those roles.
type InAppProcessor struct {
	repo   repository.InAppRepository
	hub    *ws.Manager
	logger *zap.Logger
}

func NewInAppProcessor(repo repository.InAppRepository, hub *ws.Manager, logger *zap.Logger) *InAppProcessor {
	return &InAppProcessor{repo: repo, hub: hub, logger: logger}
}

func (p *InAppProcessor) Process(ctx context.Context, msg kafka.Message) error {
	var env domain.InAppEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return errs.Structural("in-app envelope: %v", err)
	}
	if err := validateInAppEnvelope(env.Data); err != nil {
		return err
	}

	// Producers filter empty role lists before enqueue, but a consumer must
	// still treat one as "do not persist", not as an error.
	if len(env.Data.UserRoleIDs) == 0 {
		p.logger.Debug("in-app envelope with no target roles, ignoring",
			zap.String("innovation_id", env.Data.InnovationID))
		return nil
	}

	created, err := p.repo.CreateBatch(ctx, env.Data)
	if err != nil {
		return err
	}

	if p.hub != nil {
		for _, n := range created {
			p.hub.Send([]string{n.UserRoleID}, n)
		}
	}
	return nil
}

func validateInAppEnvelope(d domain.InAppEnvelopeData) error {
	if d.InnovationID == "" {
		return errs.Structural("in-app envelope: missing innovationId")
	}
	if d.Context.Type == "" || d.Context.Detail == "" || d.Context.ID == "" {
		return errs.Structural("in-app envelope: incomplete context")
	}
	return nil
}
