// Package kafka binds the services to the broker: a shared keyed producer and
// a consumer-group reader with manual commits. Messages are keyed by saga or
// order id, so the broker's per-key ordering keeps each saga's messages in
// sequence.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer publishes keyed messages with acks from all replicas. Writes are
// retried a bounded number of times; after that the caller decides, which for
// outbox publishing means leaving the row for the next poll tick.
type Producer struct {
	writer  *kafka.Writer
	retries int
	log     zerolog.Logger
}

func NewProducer(brokers []string, writeTimeout time.Duration, retries int, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: writeTimeout,
	}
	log.Info().Strs("brokers", brokers).Msg("kafka producer initialized")
	return &Producer{writer: writer, retries: retries, log: log}
}

func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	}
	err := retry.Do(
		func() error { return p.writer.WriteMessages(ctx, msg) },
		retry.Context(ctx),
		retry.Attempts(uint(p.retries)),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("produce message to %s: %w", topic, err)
	}
	p.log.Debug().Str("topic", topic).Str("key", string(key)).Msg("produced message")
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
