package restaurant

import (
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Product is a restaurant menu entry with its confirmed price and availability.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     valueobject.Money
	Quantity  int
	Available bool
}

// Restaurant holds the subset of restaurant data relevant to order approval.
type Restaurant struct {
	ID       uuid.UUID
	Name     string
	Active   bool
	Products []*Product
}

// OrderApproval records the restaurant's verdict on one paid order.
type OrderApproval struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	RestaurantID uuid.UUID
	Status       valueobject.OrderApprovalStatus
	CreatedAt    time.Time
}

// NewOrderApproval creates an approval record for the given order.
func NewOrderApproval(orderID, restaurantID uuid.UUID, status valueobject.OrderApprovalStatus) *OrderApproval {
	return &OrderApproval{
		ID:           uuid.New(),
		OrderID:      orderID,
		RestaurantID: restaurantID,
		Status:       status,
		CreatedAt:    time.Now(),
	}
}
