package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
)

// Outbox payloads are the serialized domain-event snapshots stored in the
// outbox tables. The scheduler publishes them verbatim as message values, so
// each payload is the wire shape minus the saga id (which lives in its own
// outbox column and becomes the message key).

// PaymentEventPayload is the payment-outbox payload: a payment request
// awaiting publication to the payment service.
type PaymentEventPayload struct {
	OrderID            string             `json:"order_id"`
	CustomerID         string             `json:"customer_id"`
	Price              valueobject.Money  `json:"price"`
	CreatedAt          time.Time          `json:"created_at"`
	PaymentOrderStatus PaymentOrderStatus `json:"payment_order_status"`
}

// ApprovalEventPayload is the approval-outbox payload: an approval request
// awaiting publication to the restaurant service.
type ApprovalEventPayload struct {
	OrderID               string                   `json:"order_id"`
	RestaurantID          string                   `json:"restaurant_id"`
	Products              []ApprovalRequestProduct `json:"products"`
	Price                 valueobject.Money        `json:"price"`
	CreatedAt             time.Time                `json:"created_at"`
	RestaurantOrderStatus RestaurantOrderStatus    `json:"restaurant_order_status"`
}

// PaymentResponsePayload is the payment service's response-outbox payload.
type PaymentResponsePayload struct {
	OrderID         string                    `json:"order_id"`
	PaymentID       string                    `json:"payment_id"`
	CustomerID      string                    `json:"customer_id"`
	Price           valueobject.Money         `json:"price"`
	CreatedAt       time.Time                 `json:"created_at"`
	PaymentStatus   valueobject.PaymentStatus `json:"payment_status"`
	FailureMessages []string                  `json:"failure_messages"`
}

// MarshalPayload serializes an outbox payload. A marshal failure is a
// protocol violation, not a runtime condition.
func MarshalPayload(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return b, nil
}
