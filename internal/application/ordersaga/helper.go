package ordersaga

import (
	"context"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderStatusToSagaStatus derives the saga lifecycle marker from the order's
// status after a transition.
func OrderStatusToSagaStatus(status valueobject.OrderStatus) saga.Status {
	switch status {
	case valueobject.OrderStatusPaid:
		return saga.StatusProcessing
	case valueobject.OrderStatusApproved:
		return saga.StatusSucceeded
	case valueobject.OrderStatusCancelling:
		return saga.StatusCompensating
	case valueobject.OrderStatusCancelled:
		return saga.StatusCompensated
	default:
		return saga.StatusStarted
	}
}

// domainErrProtocol marks an orchestration bug: a condition that cannot occur
// unless the saga protocol itself was violated. Always propagated, never
// swallowed as a duplicate.
func domainErrProtocol(msg string) error {
	return domainErrors.NewDomainError("saga_protocol_violation", msg, nil)
}

// sagaHelper shares order lookup/persistence between the saga steps.
type sagaHelper struct {
	orders order.Repository
	log    zerolog.Logger
}

func (h sagaHelper) findOrder(ctx context.Context, orderID string) (*order.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, domainErrors.NewValidationError("order_id", "not a valid uuid: "+orderID)
	}
	o, err := h.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	if o == nil {
		h.log.Error().Str("order_id", orderID).Msg("order could not be found")
		return nil, fmt.Errorf("order %s: %w", orderID, domainErrors.ErrOrderNotFound)
	}
	return o, nil
}

func (h sagaHelper) saveOrder(ctx context.Context, o *order.Order) error {
	if err := h.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("save order %s: %w", o.ID, err)
	}
	return nil
}
