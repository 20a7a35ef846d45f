package paymentflow_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/foodordering/system/internal/application/paymentflow"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/internal/testutil"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentEnv struct {
	handler    *paymentflow.RequestHandler
	payments   *testutil.MockPaymentRepository
	credits    *testutil.MockCreditRepository
	respOutbox *testutil.MockOutboxStore
}

func setupPaymentEnv() *paymentEnv {
	env := &paymentEnv{
		payments:   testutil.NewMockPaymentRepository(),
		credits:    testutil.NewMockCreditRepository(),
		respOutbox: testutil.NewMockOutboxStore(),
	}
	txm := testutil.NewMockTransactionManager(env.payments, env.credits, env.respOutbox)
	env.handler = paymentflow.NewRequestHandler(txm, env.payments, env.credits,
		paymentflow.NewResponseOutboxHelper(env.respOutbox), testutil.NopLogger())
	return env
}

func responsePayload(t *testing.T, env *paymentEnv) messaging.PaymentResponsePayload {
	t.Helper()
	msgs := env.respOutbox.Messages()
	require.Len(t, msgs, 1)
	var payload messaging.PaymentResponsePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	return payload
}

func TestPersistPayment_Completes(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("100.00"))

	req := testutil.NewTestPaymentRequest(uuid.New(), customerID, uuid.New(), messaging.PaymentOrderStatusPending)
	require.NoError(t, env.handler.PersistPayment(context.Background(), req))

	payload := responsePayload(t, env)
	assert.Equal(t, valueobject.PaymentStatusCompleted, payload.PaymentStatus)
	assert.Empty(t, payload.FailureMessages)

	entry := env.credits.GetEntry(customerID)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("50.00")))

	history := env.credits.HistoryFor(customerID)
	require.Len(t, history, 2)
	assert.Equal(t, valueobject.TransactionTypeDebit, history[1].TransactionType)

	msgs := env.respOutbox.Messages()
	assert.Equal(t, saga.StatusProcessing, msgs[0].SagaStatus)
}

func TestPersistPayment_InsufficientCredit(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("10.00"))

	req := testutil.NewTestPaymentRequest(uuid.New(), customerID, uuid.New(), messaging.PaymentOrderStatusPending)
	require.NoError(t, env.handler.PersistPayment(context.Background(), req))

	payload := responsePayload(t, env)
	assert.Equal(t, valueobject.PaymentStatusFailed, payload.PaymentStatus)
	assert.NotEmpty(t, payload.FailureMessages)

	// a failed attempt must not touch the ledger
	entry := env.credits.GetEntry(customerID)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("10.00")))
	assert.Len(t, env.credits.HistoryFor(customerID), 1)

	// the payment itself is kept, recorded as FAILED
	p, err := env.payments.FindByOrderID(context.Background(), uuid.MustParse(req.OrderID))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, valueobject.PaymentStatusFailed, p.Status)

	assert.Equal(t, saga.StatusFailed, env.respOutbox.Messages()[0].SagaStatus)
}

func TestPersistPayment_DuplicateRequestIsNoOp(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("100.00"))

	req := testutil.NewTestPaymentRequest(uuid.New(), customerID, uuid.New(), messaging.PaymentOrderStatusPending)
	require.NoError(t, env.handler.PersistPayment(context.Background(), req))
	require.NoError(t, env.handler.PersistPayment(context.Background(), req))

	// one outcome, one debit
	assert.Len(t, env.respOutbox.Messages(), 1)
	entry := env.credits.GetEntry(customerID)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("50.00")))
	assert.Len(t, env.credits.HistoryFor(customerID), 2)
}

func TestPersistPayment_MissingCreditEntry(t *testing.T) {
	env := setupPaymentEnv()

	req := testutil.NewTestPaymentRequest(uuid.New(), uuid.New(), uuid.New(), messaging.PaymentOrderStatusPending)
	err := env.handler.PersistPayment(context.Background(), req)
	assert.ErrorIs(t, err, domainErrors.ErrCreditEntryNotFound)
	assert.Empty(t, env.respOutbox.Messages())
}

func TestPersistPayment_InvalidSagaID(t *testing.T) {
	env := setupPaymentEnv()

	req := testutil.NewTestPaymentRequest(uuid.New(), uuid.New(), uuid.New(), messaging.PaymentOrderStatusPending)
	req.SagaID = "not-a-uuid"
	err := env.handler.PersistPayment(context.Background(), req)

	var validationErr *domainErrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPersistCancelPayment_RestoresCredit(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("100.00"))
	orderID := uuid.New()

	// complete a payment, then cancel it within the same saga instance
	sagaID := uuid.New()
	require.NoError(t, env.handler.PersistPayment(context.Background(),
		testutil.NewTestPaymentRequest(orderID, customerID, sagaID, messaging.PaymentOrderStatusPending)))

	cancelReq := testutil.NewTestPaymentRequest(orderID, customerID, sagaID, messaging.PaymentOrderStatusCancelled)
	require.NoError(t, env.handler.PersistCancelPayment(context.Background(), cancelReq))

	entry := env.credits.GetEntry(customerID)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("100.00")))

	history := env.credits.HistoryFor(customerID)
	require.Len(t, history, 3)
	credit := payment.TotalHistoryAmount(history, valueobject.TransactionTypeCredit)
	debit := payment.TotalHistoryAmount(history, valueobject.TransactionTypeDebit)
	assert.True(t, entry.TotalCreditAmount.Equals(credit.Subtract(debit)))

	p, err := env.payments.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentStatusCancelled, p.Status)
}

func TestPersistCancelPayment_UnknownPayment(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("100.00"))

	req := testutil.NewTestPaymentRequest(uuid.New(), customerID, uuid.New(), messaging.PaymentOrderStatusCancelled)
	err := env.handler.PersistCancelPayment(context.Background(), req)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestPersistCancelPayment_DuplicateRequestIsNoOp(t *testing.T) {
	env := setupPaymentEnv()
	customerID := uuid.New()
	testutil.SeedCredit(env.credits, customerID, valueobject.MustMoney("100.00"))
	orderID := uuid.New()

	sagaID := uuid.New()
	require.NoError(t, env.handler.PersistPayment(context.Background(),
		testutil.NewTestPaymentRequest(orderID, customerID, sagaID, messaging.PaymentOrderStatusPending)))

	cancelReq := testutil.NewTestPaymentRequest(orderID, customerID, sagaID, messaging.PaymentOrderStatusCancelled)
	require.NoError(t, env.handler.PersistCancelPayment(context.Background(), cancelReq))
	require.NoError(t, env.handler.PersistCancelPayment(context.Background(), cancelReq))

	// the second cancel must not credit the customer twice
	entry := env.credits.GetEntry(customerID)
	assert.True(t, entry.TotalCreditAmount.Equals(valueobject.MustMoney("100.00")))
	assert.Len(t, env.credits.HistoryFor(customerID), 3)
}
