package payment

import (
	"fmt"
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
)

// Event is the outcome of one payment attempt. HistoryRecord is the ledger
// record this attempt appended; callers persist CreditEntry and HistoryRecord
// only when FailureMessages is empty.
type Event struct {
	Payment         *Payment
	CreditEntry     *CreditEntry
	HistoryRecord   *CreditHistory
	FailureMessages []string
	CreatedAt       time.Time
}

// DomainService applies the payment business rules and the double-entry
// credit ledger discipline. It performs no I/O.
type DomainService struct{}

// ValidateAndInitiatePayment debits the customer's credit for the payment.
// Validation, credit-sufficiency, and ledger-invariant failures are collected
// as failure messages and flip the payment to FAILED; the in-memory ledger
// mutation still happens, but callers must not persist it in that case.
func (s DomainService) ValidateAndInitiatePayment(p *Payment, entry *CreditEntry, history []*CreditHistory) *Event {
	var failures []string

	p.Validate(&failures)
	s.validateCreditEntry(p, entry, &failures)
	entry.Subtract(p.Price)
	record := NewCreditHistory(p.CustomerID, p.Price, valueobject.TransactionTypeDebit)
	history = append(history, record)
	s.validateCreditHistory(entry, history, &failures)

	if len(failures) == 0 {
		p.UpdateStatus(valueobject.PaymentStatusCompleted)
	} else {
		p.UpdateStatus(valueobject.PaymentStatusFailed)
	}

	return &Event{
		Payment:         p,
		CreditEntry:     entry,
		HistoryRecord:   record,
		FailureMessages: failures,
		CreatedAt:       time.Now(),
	}
}

// ValidateAndCancelPayment reverses a completed payment: the price is added
// back to the credit entry and a CREDIT record appended to the ledger.
func (s DomainService) ValidateAndCancelPayment(p *Payment, entry *CreditEntry, history []*CreditHistory) *Event {
	var failures []string

	p.Validate(&failures)
	entry.Add(p.Price)
	record := NewCreditHistory(p.CustomerID, p.Price, valueobject.TransactionTypeCredit)

	if len(failures) == 0 {
		p.UpdateStatus(valueobject.PaymentStatusCancelled)
	} else {
		p.UpdateStatus(valueobject.PaymentStatusFailed)
	}

	return &Event{
		Payment:         p,
		CreditEntry:     entry,
		HistoryRecord:   record,
		FailureMessages: failures,
		CreatedAt:       time.Now(),
	}
}

func (DomainService) validateCreditEntry(p *Payment, entry *CreditEntry, failures *[]string) {
	if p.Price.IsGreaterThan(entry.TotalCreditAmount) {
		*failures = append(*failures,
			fmt.Sprintf("customer %s does not have enough credit for payment", p.CustomerID))
	}
}

func (DomainService) validateCreditHistory(entry *CreditEntry, history []*CreditHistory, failures *[]string) {
	totalCredit := TotalHistoryAmount(history, valueobject.TransactionTypeCredit)
	totalDebit := TotalHistoryAmount(history, valueobject.TransactionTypeDebit)

	if totalDebit.IsGreaterThan(totalCredit) {
		*failures = append(*failures,
			fmt.Sprintf("customer %s does not have enough credit according to credit history", entry.CustomerID))
	}
	if !entry.TotalCreditAmount.Equals(totalCredit.Subtract(totalDebit)) {
		*failures = append(*failures,
			fmt.Sprintf("credit history total does not equal current credit for customer %s", entry.CustomerID))
	}
}
