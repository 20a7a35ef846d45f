package scheduler

import (
	"context"
	"time"

	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/pkg/saga"
	"github.com/rs/zerolog"
)

// terminalSagaStatuses are the statuses after which an outbox row carries no
// further protocol state and may be removed once published.
var terminalSagaStatuses = []saga.Status{
	saga.StatusSucceeded,
	saga.StatusFailed,
	saga.StatusCompensated,
}

// Cleaner periodically deletes COMPLETED outbox rows of finished sagas. It
// runs on a much longer interval than the publisher; rows of live sagas are
// never touched because idempotency checks still read them.
type Cleaner struct {
	name     string
	store    outbox.Store
	sagaType string
	interval time.Duration
	log      zerolog.Logger
}

func NewCleaner(name string, store outbox.Store, sagaType string, interval time.Duration, log zerolog.Logger) *Cleaner {
	return &Cleaner{
		name:     name,
		store:    store,
		sagaType: sagaType,
		interval: interval,
		log:      log.With().Str("scheduler", name).Logger(),
	}
}

func (c *Cleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := c.Clean(ctx); err != nil {
			c.log.Error().Err(err).Msg("outbox cleanup failed")
		}
	}
}

func (c *Cleaner) Clean(ctx context.Context) error {
	err := c.store.DeleteByOutboxStatusAndSagaStatus(ctx, c.sagaType, outbox.StatusCompleted, terminalSagaStatuses...)
	if err != nil {
		return err
	}
	c.log.Debug().Msg("completed outbox messages cleaned")
	return nil
}
