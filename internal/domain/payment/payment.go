package payment

import (
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Payment is the aggregate root owned by the payment service. One payment is
// created on the first payment request per order; a later cancel request
// transitions its status, it never creates a new identity.
type Payment struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Price      valueobject.Money
	Status     valueobject.PaymentStatus
	CreatedAt  time.Time
}

// New creates a payment for the given order. The status is set by the domain
// service once validation and the ledger mutation have run.
func New(orderID, customerID uuid.UUID, price valueobject.Money) *Payment {
	return &Payment{
		ID:         uuid.New(),
		OrderID:    orderID,
		CustomerID: customerID,
		Price:      price,
		CreatedAt:  time.Now(),
	}
}

// Validate collects structural failures into failures instead of returning an
// error: a malformed payment is a FAILED outcome, not an exception.
func (p *Payment) Validate(failures *[]string) {
	if !p.Price.IsGreaterThanZero() {
		*failures = append(*failures,
			fmt.Sprintf("payment price %s must be greater than zero for order %s", p.Price, p.OrderID))
	}
}

// UpdateStatus sets the payment's terminal status for this saga attempt.
func (p *Payment) UpdateStatus(status valueobject.PaymentStatus) {
	p.Status = status
}
