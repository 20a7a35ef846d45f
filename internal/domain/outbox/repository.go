package outbox

import (
	"context"

	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
)

// Store is the durable table of outbox messages for one saga type. Save must
// participate in the caller's transaction when one is active: the outbox write
// and its triggering aggregate write share a single commit.
type Store interface {
	// Save inserts the message, or updates it guarded by its version token.
	// A conflicting concurrent update fails with ErrOptimisticLockFailed.
	Save(ctx context.Context, msg *Message) error

	// FindBySagaIDAndSagaStatus returns the row for the saga instance whose
	// saga status is one of the given statuses, or nil when absent.
	FindBySagaIDAndSagaStatus(ctx context.Context, sagaType string, sagaID uuid.UUID, statuses ...saga.Status) (*Message, error)

	// FindByOutboxStatusAndSagaStatus returns every row in the given publish
	// state whose saga status is one of the given statuses.
	FindByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus Status, statuses ...saga.Status) ([]*Message, error)

	// DeleteByOutboxStatusAndSagaStatus removes rows eligible for cleanup.
	DeleteByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus Status, statuses ...saga.Status) error
}
