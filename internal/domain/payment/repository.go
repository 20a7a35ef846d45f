package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines payment persistence.
type Repository interface {
	Save(ctx context.Context, p *Payment) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

// CreditRepository persists credit entries and the append-only ledger.
// SaveEntry honors the entry's version token for optimistic concurrency.
type CreditRepository interface {
	FindEntryByCustomerID(ctx context.Context, customerID uuid.UUID) (*CreditEntry, error)
	SaveEntry(ctx context.Context, entry *CreditEntry) error
	FindHistoryByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*CreditHistory, error)
	AppendHistory(ctx context.Context, record *CreditHistory) error
}
