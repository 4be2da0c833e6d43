package queue

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

// ProcessFunc handles one raw message. Returning nil or a structural error
// acknowledges the message; anything else leaves it uncommitted for
// platform-level redelivery. Consumers never run their own retry loops.
type ProcessFunc func(ctx context.Context, msg kafka.Message) error

// Consumer is a message-in/message-out worker loop bound to one topic.
type Consumer struct {
	name    string
	reader  *kafka.Reader
	process ProcessFunc
	logger  *zap.Logger
}

func NewConsumer(name string, reader *kafka.Reader, process ProcessFunc, logger *zap.Logger) *Consumer {
	return &Consumer{name: name, reader: reader, process: process, logger: logger}
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Run fetches until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("consumer started", zap.String("consumer", c.name))
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopping", zap.String("consumer", c.name))
				return
			}
			c.logger.Error("fetch failed", zap.String("consumer", c.name), zap.Error(err))
			continue
		}

		err = c.process(ctx, m)
		switch {
		case err == nil:
			c.commit(ctx, m)
		case errs.IsStructural(err):
			// Terminal for this message: retrying cannot make a malformed
			// payload valid. Log and acknowledge.
			c.logger.Error("dropping malformed message",
				zap.String("consumer", c.name),
				zap.Error(err),
				zap.Int64("offset", m.Offset))
			c.commit(ctx, m)
		default:
			// Transient: leave uncommitted so the broker redelivers.
			c.logger.Warn("message processing failed, leaving for redelivery",
				zap.String("consumer", c.name),
				zap.Error(err),
				zap.Int64("offset", m.Offset))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.logger.Error("commit failed", zap.String("consumer", c.name), zap.Error(err))
	}
}
