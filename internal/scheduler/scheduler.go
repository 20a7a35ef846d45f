// Package scheduler drives the outbox tables: a Scheduler polls unpublished
// rows on a fixed interval and hands them to the broker, a Cleaner removes
// rows whose saga reached a terminal status. Publication is at-least-once: a
// row is only marked COMPLETED after the broker acknowledged it, and a failed
// publish leaves the row for the next tick.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/pkg/saga"
	"github.com/rs/zerolog"
)

// Source yields the outbox rows ready for publication and records a
// successful publish.
type Source interface {
	Pending(ctx context.Context) ([]*outbox.Message, error)
	MarkCompleted(ctx context.Context, msg *outbox.Message) error
}

// Publisher sends one outbox message to the broker and returns once it is
// acknowledged.
type Publisher interface {
	Publish(ctx context.Context, msg *outbox.Message) error
}

// Scheduler polls one outbox source and publishes whatever it finds.
type Scheduler struct {
	name      string
	source    Source
	publisher Publisher
	interval  time.Duration
	log       zerolog.Logger
}

func New(name string, source Source, publisher Publisher, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		name:      name,
		source:    source,
		publisher: publisher,
		interval:  interval,
		log:       log.With().Str("scheduler", name).Logger(),
	}
}

// Run polls until the context is cancelled. Poll errors are logged, never
// fatal: the next tick retries from the table.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := s.Poll(ctx); err != nil {
			s.log.Error().Err(err).Msg("outbox poll failed")
		}
	}
}

// Poll runs one polling pass. A publish failure stops the pass for that row
// only; already published rows keep their COMPLETED mark, so a crash between
// publish and mark yields a duplicate publish, never a lost one.
func (s *Scheduler) Poll(ctx context.Context) error {
	messages, err := s.source.Pending(ctx)
	if err != nil {
		return fmt.Errorf("fetch pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	s.log.Debug().Int("count", len(messages)).Msg("publishing outbox messages")
	for _, msg := range messages {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Error().Err(err).
				Str("outbox_id", msg.ID.String()).
				Str("saga_id", msg.SagaID.String()).
				Msg("could not publish outbox message")
			continue
		}
		if err := s.source.MarkCompleted(ctx, msg); err != nil {
			s.log.Error().Err(err).
				Str("outbox_id", msg.ID.String()).
				Msg("could not mark outbox message completed")
		}
	}
	return nil
}

// StoreSource adapts an outbox.Store to the Source interface for one saga
// type and the saga statuses in which its rows await publication.
type StoreSource struct {
	store        outbox.Store
	sagaType     string
	sagaStatuses []saga.Status
}

func NewStoreSource(store outbox.Store, sagaType string, sagaStatuses ...saga.Status) *StoreSource {
	return &StoreSource{store: store, sagaType: sagaType, sagaStatuses: sagaStatuses}
}

func (s *StoreSource) Pending(ctx context.Context) ([]*outbox.Message, error) {
	return s.store.FindByOutboxStatusAndSagaStatus(ctx, s.sagaType, outbox.StatusStarted, s.sagaStatuses...)
}

func (s *StoreSource) MarkCompleted(ctx context.Context, msg *outbox.Message) error {
	msg.OutboxStatus = outbox.StatusCompleted
	return s.store.Save(ctx, msg)
}
