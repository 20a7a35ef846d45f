package ordersaga

import (
	"context"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// TrackOrderResult is the read-side answer to a track-order query.
type TrackOrderResult struct {
	TrackingID      uuid.UUID
	OrderStatus     valueobject.OrderStatus
	FailureMessages []string
}

// TrackOrderHandler answers track-order queries by tracking id.
type TrackOrderHandler struct {
	orders order.Repository
}

func NewTrackOrderHandler(orders order.Repository) *TrackOrderHandler {
	return &TrackOrderHandler{orders: orders}
}

func (h *TrackOrderHandler) Execute(ctx context.Context, trackingID uuid.UUID) (*TrackOrderResult, error) {
	o, err := h.orders.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("find order by tracking id %s: %w", trackingID, err)
	}
	if o == nil {
		return nil, fmt.Errorf("order with tracking id %s: %w", trackingID, domainErrors.ErrOrderNotFound)
	}
	return &TrackOrderResult{
		TrackingID:      o.TrackingID,
		OrderStatus:     o.Status,
		FailureMessages: o.FailureMessages,
	}, nil
}
