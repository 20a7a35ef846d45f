// Package messaging defines the wire models exchanged between the services
// and the adapters binding the broker to the application listeners. All
// messages are JSON-encoded and keyed by order id or saga id so the broker's
// per-key ordering applies.
package messaging

import (
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
)

// PaymentOrderStatus is the order-side intent carried by a payment request.
type PaymentOrderStatus string

const (
	PaymentOrderStatusPending   PaymentOrderStatus = "PENDING"
	PaymentOrderStatusCancelled PaymentOrderStatus = "CANCELLED"
)

// RestaurantOrderStatus is the order-side status carried by an approval request.
type RestaurantOrderStatus string

const RestaurantOrderStatusPaid RestaurantOrderStatus = "PAID"

// PaymentRequest asks the payment service to complete or cancel a payment.
// It is the published form of a payment-outbox payload.
type PaymentRequest struct {
	ID                 string             `json:"id"`
	SagaID             string             `json:"saga_id"`
	OrderID            string             `json:"order_id"`
	CustomerID         string             `json:"customer_id"`
	Price              valueobject.Money  `json:"price"`
	CreatedAt          time.Time          `json:"created_at"`
	PaymentOrderStatus PaymentOrderStatus `json:"payment_order_status"`
}

// PaymentResponse reports the outcome of a payment attempt to the order service.
type PaymentResponse struct {
	ID              string                    `json:"id"`
	SagaID          string                    `json:"saga_id"`
	OrderID         string                    `json:"order_id"`
	PaymentID       string                    `json:"payment_id"`
	CustomerID      string                    `json:"customer_id"`
	Price           valueobject.Money         `json:"price"`
	CreatedAt       time.Time                 `json:"created_at"`
	PaymentStatus   valueobject.PaymentStatus `json:"payment_status"`
	FailureMessages []string                  `json:"failure_messages"`
}

// ApprovalRequestProduct is one ordered line sent for restaurant review.
type ApprovalRequestProduct struct {
	ID       string            `json:"id"`
	Quantity int               `json:"quantity"`
	Price    valueobject.Money `json:"price"`
}

// RestaurantApprovalRequest asks the restaurant service to approve a paid order.
type RestaurantApprovalRequest struct {
	ID                    string                   `json:"id"`
	SagaID                string                   `json:"saga_id"`
	OrderID               string                   `json:"order_id"`
	RestaurantID          string                   `json:"restaurant_id"`
	Products              []ApprovalRequestProduct `json:"products"`
	Price                 valueobject.Money        `json:"price"`
	CreatedAt             time.Time                `json:"created_at"`
	RestaurantOrderStatus RestaurantOrderStatus    `json:"restaurant_order_status"`
}

// RestaurantApprovalResponse reports the restaurant's verdict to the order service.
type RestaurantApprovalResponse struct {
	ID                  string                          `json:"id"`
	SagaID              string                          `json:"saga_id"`
	OrderID             string                          `json:"order_id"`
	RestaurantID        string                          `json:"restaurant_id"`
	CreatedAt           time.Time                       `json:"created_at"`
	OrderApprovalStatus valueobject.OrderApprovalStatus `json:"order_approval_status"`
	FailureMessages     []string                        `json:"failure_messages"`
}

// CustomerCreated announces a new customer to interested services.
type CustomerCreated struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OrderCreated, OrderPaid and OrderCancelled are the order service's own
// domain events, published directly (no outbox) since they originate from a
// synchronous command and are keyed by order id.
type OrderCreated struct {
	OrderID    string            `json:"order_id"`
	CustomerID string            `json:"customer_id"`
	Price      valueobject.Money `json:"price"`
	CreatedAt  time.Time         `json:"created_at"`
}

type OrderPaid struct {
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderCancelled struct {
	OrderID         string    `json:"order_id"`
	FailureMessages []string  `json:"failure_messages"`
	CreatedAt       time.Time `json:"created_at"`
}
