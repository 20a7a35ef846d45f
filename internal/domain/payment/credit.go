package payment

import (
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
)

// CreditEntry is a customer's current credit balance, one row per customer.
// It is mutated only through Subtract and Add, each of which must be paired
// with a CreditHistory record in the same transaction.
type CreditEntry struct {
	ID                uuid.UUID
	CustomerID        uuid.UUID
	TotalCreditAmount valueobject.Money
	Version           int
}

// Subtract debits the customer's credit.
func (c *CreditEntry) Subtract(amount valueobject.Money) {
	c.TotalCreditAmount = c.TotalCreditAmount.Subtract(amount)
	c.Version++
}

// Add credits the amount back on payment cancellation.
func (c *CreditEntry) Add(amount valueobject.Money) {
	c.TotalCreditAmount = c.TotalCreditAmount.Add(amount)
	c.Version++
}

// CreditHistory is one append-only ledger record, many per customer. The
// double-entry invariant checked on every payment attempt is
// sum(CREDIT) - sum(DEBIT) == CreditEntry.TotalCreditAmount.
type CreditHistory struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Amount          valueobject.Money
	TransactionType valueobject.TransactionType
	CreatedAt       time.Time
}

// NewCreditHistory creates a ledger record for the given transaction.
func NewCreditHistory(customerID uuid.UUID, amount valueobject.Money, txType valueobject.TransactionType) *CreditHistory {
	return &CreditHistory{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Amount:          amount,
		TransactionType: txType,
		CreatedAt:       time.Now(),
	}
}

// TotalHistoryAmount sums the records of the given transaction type.
func TotalHistoryAmount(history []*CreditHistory, txType valueobject.TransactionType) valueobject.Money {
	total := valueobject.ZeroMoney
	for _, h := range history {
		if h.TransactionType == txType {
			total = total.Add(h.Amount)
		}
	}
	return total
}
