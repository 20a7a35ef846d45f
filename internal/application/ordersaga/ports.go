package ordersaga

import (
	"context"

	"github.com/foodordering/system/internal/messaging"
)

// TransactionManager scopes a unit of work to one database transaction.
// Everything executed inside fn shares a single commit: in particular, an
// aggregate save and the outbox writes it triggers.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DomainEventPublisher publishes the order service's own events directly to
// the broker, keyed by order id. These originate from synchronous commands or
// committed saga steps and do not ride the outbox; losing one does not break
// the saga, so callers treat publish failures as log-and-continue.
type DomainEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event messaging.OrderCreated) error
	PublishOrderPaid(ctx context.Context, event messaging.OrderPaid) error
	PublishOrderCancelled(ctx context.Context, event messaging.OrderCancelled) error
}
