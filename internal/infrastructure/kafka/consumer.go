package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one fetched message. Returning an error leaves the
// offset uncommitted so the broker redelivers; handlers therefore swallow
// conditions that a retry cannot fix and propagate only transient failures.
type MessageHandler func(ctx context.Context, message []byte) error

// Consumer reads one topic as part of a consumer group with manual commits.
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     zerolog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, handler MessageHandler, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:  reader,
		handler: handler,
		log:     log.With().Str("topic", topic).Str("group_id", groupID).Logger(),
	}
}

// Run fetches and handles messages until the context is cancelled. A handler
// error skips the commit and the message comes back on the next fetch.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info().Msg("kafka consumer started")
	defer c.reader.Close()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handler(ctx, m.Value); err != nil {
			c.log.Error().Err(err).
				Int("partition", m.Partition).
				Int64("offset", m.Offset).
				Msg("message handling failed, offset not committed")
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Error().Err(err).
				Int("partition", m.Partition).
				Int64("offset", m.Offset).
				Msg("could not commit message offset")
		}
	}
}
