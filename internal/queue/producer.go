package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
)

// NewWriter builds a topic writer with the service's standard settings.
// Writes are synchronous: the scheduler deletes scheduled rows only after a
// confirmed enqueue, so fire-and-forget is not an option here.
func NewWriter(brokers []string, topic string, logger *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
	}
}

// Producer fans handler output into the two outbound topics, preserving
// append order within each channel.
type Producer struct {
	emails *kafka.Writer
	inApp  *kafka.Writer
	logger *zap.Logger
}

func NewProducer(emails, inApp *kafka.Writer, logger *zap.Logger) *Producer {
	return &Producer{emails: emails, inApp: inApp, logger: logger}
}

// EnqueueOutput pushes every payload of one handler run. The run is the
// unit of atomicity for delivery decisions: any enqueue failure fails the
// whole call so the inbound message is redelivered rather than half-sent.
func (p *Producer) EnqueueOutput(ctx context.Context, out *handlers.Output, requestUserID string) error {
	if err := p.EnqueueEmails(ctx, out.Emails); err != nil {
		return err
	}
	return p.EnqueueInApp(ctx, out.InApp, requestUserID)
}

func (p *Producer) EnqueueEmails(ctx context.Context, payloads []domain.EmailPayload) error {
	if len(payloads) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(payloads))
	for _, e := range payloads {
		env := domain.EmailEnvelope{Data: domain.EmailEnvelopeData{
			Type:   e.TemplateID,
			To:     e.To,
			Params: e.Params,
			Log:    e.Log,
		}}
		value, err := json.Marshal(env)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Value: value})
	}

	return p.emails.WriteMessages(ctx, msgs...)
}

// EnqueueInApp filters payloads with no target roles before enqueue: an
// empty role list means "do not persist" and must never reach the topic.
func (p *Producer) EnqueueInApp(ctx context.Context, payloads []domain.InAppPayload, requestUserID string) error {
	msgs := make([]kafka.Message, 0, len(payloads))
	for _, n := range payloads {
		if len(n.UserRoleIDs) == 0 {
			p.logger.Debug("skipping in-app payload with no target roles",
				zap.String("innovation_id", n.InnovationID))
			continue
		}
		data := domain.InAppEnvelopeData{
			InnovationID:   n.InnovationID,
			Context:        n.Context,
			UserRoleIDs:    n.UserRoleIDs,
			Params:         n.Params,
			NotificationID: n.NotificationID,
		}
		data.RequestUser.ID = requestUserID
		value, err := json.Marshal(domain.InAppEnvelope{Data: data})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Value: value})
	}
	if len(msgs) == 0 {
		return nil
	}

	return p.inApp.WriteMessages(ctx, msgs...)
}
