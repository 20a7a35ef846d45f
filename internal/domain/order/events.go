package order

import "time"

// CreatedEvent is emitted when a new order passes validation.
type CreatedEvent struct {
	Order     *Order
	CreatedAt time.Time
}

// PaidEvent is emitted when the payment service confirms payment.
type PaidEvent struct {
	Order     *Order
	CreatedAt time.Time
}

// CancelledEvent is emitted when an order starts compensation and carries the
// cancel-payment request downstream.
type CancelledEvent struct {
	Order     *Order
	CreatedAt time.Time
}
