package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines order persistence. Save must honor the aggregate's
// version token: a conflicting concurrent write fails with
// ErrOptimisticLockFailed instead of blocking.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByTrackingID(ctx context.Context, trackingID uuid.UUID) (*Order, error)
}
