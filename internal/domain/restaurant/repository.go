package restaurant

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines restaurant persistence for the approval flow.
type Repository interface {
	// FindByIDWithProducts loads the restaurant restricted to the given
	// products. Unknown product ids are simply absent from the result.
	FindByIDWithProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*Restaurant, error)
}

// ApprovalRepository persists the restaurant's approval records.
type ApprovalRepository interface {
	Save(ctx context.Context, approval *OrderApproval) error
}
