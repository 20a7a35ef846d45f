package restaurant

import (
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// OrderDetail is the paid order as presented to the restaurant for approval.
type OrderDetail struct {
	OrderID     uuid.UUID
	Products    []OrderedProduct
	TotalAmount valueobject.Money
	OrderStatus valueobject.OrderStatus
}

// OrderedProduct is one requested line of the order under review.
type OrderedProduct struct {
	ProductID uuid.UUID
	Quantity  int
	Price     valueobject.Money
}

// ApprovalEvent carries the restaurant's verdict back to the order service.
type ApprovalEvent struct {
	Approval        *OrderApproval
	FailureMessages []string
	CreatedAt       time.Time
}

// DomainService evaluates approval rules against the restaurant's own data.
type DomainService struct{}

// ValidateOrder approves or rejects a paid order. Rejections collect failure
// messages rather than failing: a rejection is a normal state-machine outcome
// that drives compensation on the order side.
func (DomainService) ValidateOrder(r *Restaurant, detail OrderDetail) *ApprovalEvent {
	var failures []string

	if detail.OrderStatus != valueobject.OrderStatusPaid {
		failures = append(failures,
			fmt.Sprintf("order %s is not in PAID status", detail.OrderID))
	}
	if !r.Active {
		failures = append(failures,
			fmt.Sprintf("restaurant %s is currently not active", r.ID))
	}

	products := make(map[string]*Product, len(r.Products))
	for _, p := range r.Products {
		products[p.ID.String()] = p
	}

	total := valueobject.ZeroMoney
	for _, ordered := range detail.Products {
		p, ok := products[ordered.ProductID.String()]
		if !ok {
			failures = append(failures,
				fmt.Sprintf("product %s is not offered by restaurant %s", ordered.ProductID, r.ID))
			continue
		}
		if !p.Available {
			failures = append(failures, fmt.Sprintf("product %s is not available", ordered.ProductID))
		}
		if !p.Price.Equals(ordered.Price) {
			failures = append(failures,
				fmt.Sprintf("product %s price %s does not match confirmed price %s",
					ordered.ProductID, ordered.Price, p.Price))
		}
		total = total.Add(p.Price.Multiply(ordered.Quantity))
	}
	if len(failures) == 0 && !detail.TotalAmount.Equals(total) {
		failures = append(failures,
			fmt.Sprintf("order total %s does not match product total %s", detail.TotalAmount, total))
	}

	status := valueobject.OrderApprovalStatusApproved
	if len(failures) > 0 {
		status = valueobject.OrderApprovalStatusRejected
	}

	return &ApprovalEvent{
		Approval:        NewOrderApproval(detail.OrderID, r.ID, status),
		FailureMessages: failures,
		CreatedAt:       time.Now(),
	}
}
