package order

import (
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// FailureMessageDelimiter joins an order's failure messages for transport.
const FailureMessageDelimiter = ","

// Address is the delivery address captured at order creation.
type Address struct {
	Street     string
	PostalCode string
	City       string
}

// Item is one order line. SubTotal must equal Price * Quantity.
type Item struct {
	ProductID uuid.UUID
	Quantity  int
	Price     valueobject.Money
	SubTotal  valueobject.Money
}

// Order is the aggregate root owned by the order service. TrackingID is the
// public-facing identifier, distinct from the internal ID. Orders are never
// deleted, only transitioned to a terminal status.
type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	RestaurantID    uuid.UUID
	TrackingID      uuid.UUID
	Address         Address
	Items           []Item
	Price           valueobject.Money
	Status          valueobject.OrderStatus
	FailureMessages []string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New builds a fully-formed PENDING order and validates its price structure:
// every item's subtotal must equal price * quantity and the total must equal
// the sum of subtotals.
func New(customerID, restaurantID uuid.UUID, address Address, items []Item, price valueobject.Money) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.NewValidationError("items", "order must have at least one item")
	}
	if !price.IsGreaterThanZero() {
		return nil, errors.NewValidationError("price", "total price must be greater than zero")
	}

	itemsTotal := valueobject.ZeroMoney
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.NewValidationError("items", fmt.Sprintf("item %d quantity must be positive", i))
		}
		if !item.Price.IsGreaterThanZero() {
			return nil, errors.NewValidationError("items", fmt.Sprintf("item %d price must be greater than zero", i))
		}
		if !item.SubTotal.Equals(item.Price.Multiply(item.Quantity)) {
			return nil, errors.NewValidationError("items",
				fmt.Sprintf("item %d subtotal %s does not equal price %s * quantity %d",
					i, item.SubTotal, item.Price, item.Quantity))
		}
		itemsTotal = itemsTotal.Add(item.SubTotal)
	}
	if !price.Equals(itemsTotal) {
		return nil, errors.NewDomainError("price_mismatch",
			fmt.Sprintf("total price %s does not equal item total %s", price, itemsTotal),
			errors.ErrOrderPriceMismatch)
	}

	now := time.Now()
	return &Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		TrackingID:   uuid.New(),
		Address:      address,
		Items:        items,
		Price:        price,
		Status:       valueobject.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanTransitionTo reports whether the state machine permits moving to newStatus.
func (o *Order) CanTransitionTo(newStatus valueobject.OrderStatus) bool {
	transitions := map[valueobject.OrderStatus][]valueobject.OrderStatus{
		valueobject.OrderStatusPending: {
			valueobject.OrderStatusPaid,
			valueobject.OrderStatusCancelled, // payment failed before approval was ever requested
		},
		valueobject.OrderStatusApproved: {}, // terminal success
		valueobject.OrderStatusPaid: {
			valueobject.OrderStatusApproved,
			valueobject.OrderStatusCancelling,
		},
		valueobject.OrderStatusCancelling: {
			valueobject.OrderStatusCancelled,
		},
		valueobject.OrderStatusCancelled: {}, // terminal failure
	}

	allowed, ok := transitions[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (o *Order) transitionTo(newStatus valueobject.OrderStatus) error {
	if !o.CanTransitionTo(newStatus) {
		return errors.NewDomainError("invalid_transition",
			fmt.Sprintf("order %s cannot transition from %s to %s", o.ID, o.Status, newStatus),
			errors.ErrInvalidStateTransition)
	}
	o.Status = newStatus
	o.Version++
	o.UpdatedAt = time.Now()
	return nil
}

// Pay moves a pending order to PAID.
func (o *Order) Pay() error {
	return o.transitionTo(valueobject.OrderStatusPaid)
}

// Approve moves a paid order to APPROVED.
func (o *Order) Approve() error {
	return o.transitionTo(valueobject.OrderStatusApproved)
}

// InitCancel moves a paid order to CANCELLING and records why.
func (o *Order) InitCancel(failureMessages []string) error {
	if err := o.transitionTo(valueobject.OrderStatusCancelling); err != nil {
		return err
	}
	o.appendFailureMessages(failureMessages)
	return nil
}

// Cancel finalizes an order as CANCELLED. Valid from PENDING (payment failed
// before approval) and from CANCELLING (compensation acknowledged).
func (o *Order) Cancel(failureMessages []string) error {
	if err := o.transitionTo(valueobject.OrderStatusCancelled); err != nil {
		return err
	}
	o.appendFailureMessages(failureMessages)
	return nil
}

func (o *Order) appendFailureMessages(msgs []string) {
	for _, m := range msgs {
		if m != "" {
			o.FailureMessages = append(o.FailureMessages, m)
		}
	}
}
