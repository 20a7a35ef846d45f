package order

import (
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/restaurant"
)

// DomainService evaluates the order business rules. It performs no I/O:
// callers load aggregates, invoke a transition, and persist the result.
type DomainService struct{}

// ValidateAndInitiateOrder checks the order against the restaurant's current
// data. The restaurant must be active and every ordered product available; the
// order's declared item prices must match the restaurant's confirmed prices.
// The order stays PENDING, awaiting payment.
func (DomainService) ValidateAndInitiateOrder(o *Order, r *restaurant.Restaurant) (*CreatedEvent, error) {
	if !r.Active {
		return nil, errors.NewDomainError("restaurant_inactive",
			fmt.Sprintf("restaurant %s is currently not active", r.ID), nil)
	}

	products := make(map[string]*restaurant.Product, len(r.Products))
	for _, p := range r.Products {
		products[p.ID.String()] = p
	}
	for _, item := range o.Items {
		p, ok := products[item.ProductID.String()]
		if !ok {
			return nil, errors.NewDomainError("product_unknown",
				fmt.Sprintf("product %s is not offered by restaurant %s", item.ProductID, r.ID), nil)
		}
		if !p.Available {
			return nil, errors.NewDomainError("product_unavailable",
				fmt.Sprintf("product %s is not available", item.ProductID), nil)
		}
		if !p.Price.Equals(item.Price) {
			return nil, errors.NewDomainError("price_mismatch",
				fmt.Sprintf("product %s price %s does not match confirmed price %s",
					item.ProductID, item.Price, p.Price),
				errors.ErrOrderPriceMismatch)
		}
	}

	return &CreatedEvent{Order: o, CreatedAt: time.Now()}, nil
}

// PayOrder applies the payment-completed transition: PENDING -> PAID.
func (DomainService) PayOrder(o *Order) (*PaidEvent, error) {
	if err := o.Pay(); err != nil {
		return nil, err
	}
	return &PaidEvent{Order: o, CreatedAt: time.Now()}, nil
}

// ApproveOrder applies the restaurant-approved transition: PAID -> APPROVED.
func (DomainService) ApproveOrder(o *Order) error {
	return o.Approve()
}

// CancelOrderPayment starts compensation after a downstream rejection:
// PAID -> CANCELLING. The emitted event carries the cancel-payment request.
func (DomainService) CancelOrderPayment(o *Order, failureMessages []string) (*CancelledEvent, error) {
	if err := o.InitCancel(failureMessages); err != nil {
		return nil, err
	}
	return &CancelledEvent{Order: o, CreatedAt: time.Now()}, nil
}

// CancelOrder finalizes an order as CANCELLED, either directly from PENDING
// when payment failed, or from CANCELLING when the payment cancel is
// acknowledged.
func (DomainService) CancelOrder(o *Order, failureMessages []string) error {
	return o.Cancel(failureMessages)
}
