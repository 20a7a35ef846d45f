package payment

import (
	"testing"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLedger(customerID uuid.UUID, balance string) (*CreditEntry, []*CreditHistory) {
	amount := valueobject.MustMoney(balance)
	entry := &CreditEntry{
		ID:                uuid.New(),
		CustomerID:        customerID,
		TotalCreditAmount: amount,
		Version:           1,
	}
	history := []*CreditHistory{
		NewCreditHistory(customerID, amount, valueobject.TransactionTypeCredit),
	}
	return entry, history
}

func TestValidateAndInitiatePayment_Completes(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, history := seededLedger(customerID, "100.00")
	p := New(uuid.New(), customerID, valueobject.MustMoney("50.00"))

	event := svc.ValidateAndInitiatePayment(p, entry, history)

	require.Empty(t, event.FailureMessages)
	assert.Equal(t, valueobject.PaymentStatusCompleted, p.Status)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("50.00")))
	assert.Equal(t, 2, entry.Version)
	require.NotNil(t, event.HistoryRecord)
	assert.Equal(t, valueobject.TransactionTypeDebit, event.HistoryRecord.TransactionType)
	assert.True(t, event.HistoryRecord.Amount.Equals(p.Price))
}

func TestValidateAndInitiatePayment_InsufficientCredit(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, history := seededLedger(customerID, "30.00")
	p := New(uuid.New(), customerID, valueobject.MustMoney("50.00"))

	event := svc.ValidateAndInitiatePayment(p, entry, history)

	assert.Equal(t, valueobject.PaymentStatusFailed, p.Status)
	assert.NotEmpty(t, event.FailureMessages)
}

func TestValidateAndInitiatePayment_LedgerMismatch(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, _ := seededLedger(customerID, "100.00")
	// entry claims 100.00 but the ledger records nothing
	p := New(uuid.New(), customerID, valueobject.MustMoney("50.00"))

	event := svc.ValidateAndInitiatePayment(p, entry, nil)

	assert.Equal(t, valueobject.PaymentStatusFailed, p.Status)
	assert.NotEmpty(t, event.FailureMessages)
}

func TestValidateAndInitiatePayment_NonPositivePrice(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, history := seededLedger(customerID, "100.00")
	p := New(uuid.New(), customerID, valueobject.ZeroMoney)

	event := svc.ValidateAndInitiatePayment(p, entry, history)

	assert.Equal(t, valueobject.PaymentStatusFailed, p.Status)
	assert.NotEmpty(t, event.FailureMessages)
}

func TestValidateAndCancelPayment_RestoresCredit(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, history := seededLedger(customerID, "100.00")
	p := New(uuid.New(), customerID, valueobject.MustMoney("50.00"))

	completed := svc.ValidateAndInitiatePayment(p, entry, history)
	require.Empty(t, completed.FailureMessages)
	history = append(history, completed.HistoryRecord)

	cancelled := svc.ValidateAndCancelPayment(p, entry, history)

	require.Empty(t, cancelled.FailureMessages)
	assert.Equal(t, valueobject.PaymentStatusCancelled, p.Status)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("100.00")))
	require.NotNil(t, cancelled.HistoryRecord)
	assert.Equal(t, valueobject.TransactionTypeCredit, cancelled.HistoryRecord.TransactionType)
}

func TestDoubleEntryInvariant_HoldsAcrossAttempts(t *testing.T) {
	svc := DomainService{}
	customerID := uuid.New()
	entry, history := seededLedger(customerID, "100.00")

	for _, price := range []string{"20.00", "30.00"} {
		p := New(uuid.New(), customerID, valueobject.MustMoney(price))
		event := svc.ValidateAndInitiatePayment(p, entry, history)
		require.Empty(t, event.FailureMessages)
		history = append(history, event.HistoryRecord)
	}

	credit := TotalHistoryAmount(history, valueobject.TransactionTypeCredit)
	debit := TotalHistoryAmount(history, valueobject.TransactionTypeDebit)
	assert.True(t, entry.TotalCreditAmount.Equals(credit.Subtract(debit)))
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("50.00")))
}
