package ordersaga

import (
	"time"

	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/messaging"
)

func paymentEventPayload(o *order.Order, status messaging.PaymentOrderStatus, createdAt time.Time) messaging.PaymentEventPayload {
	return messaging.PaymentEventPayload{
		OrderID:            o.ID.String(),
		CustomerID:         o.CustomerID.String(),
		Price:              o.Price,
		CreatedAt:          createdAt,
		PaymentOrderStatus: status,
	}
}

func approvalEventPayload(o *order.Order, createdAt time.Time) messaging.ApprovalEventPayload {
	products := make([]messaging.ApprovalRequestProduct, 0, len(o.Items))
	for _, item := range o.Items {
		products = append(products, messaging.ApprovalRequestProduct{
			ID:       item.ProductID.String(),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return messaging.ApprovalEventPayload{
		OrderID:               o.ID.String(),
		RestaurantID:          o.RestaurantID.String(),
		Products:              products,
		Price:                 o.Price,
		CreatedAt:             createdAt,
		RestaurantOrderStatus: messaging.RestaurantOrderStatusPaid,
	}
}
