package customer

import (
	"context"

	"github.com/google/uuid"
)

// Customer is the order service's local replica of a customer, kept current
// by the customer-created message listener.
type Customer struct {
	ID        uuid.UUID
	Username  string
	FirstName string
	LastName  string
}

// Repository defines the local customer store.
type Repository interface {
	Save(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
}
