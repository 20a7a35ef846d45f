package ordersaga_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/foodordering/system/internal/application/ordersaga"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/internal/testutil"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sagaEnv struct {
	orders         *testutil.MockOrderRepository
	paymentOutbox  *testutil.MockOutboxStore
	approvalOutbox *testutil.MockOutboxStore
	events         *testutil.MockEventPublisher
	paymentSaga    *ordersaga.PaymentSaga
	approvalSaga   *ordersaga.ApprovalSaga
}

func setupSagaEnv() *sagaEnv {
	env := &sagaEnv{
		orders:         testutil.NewMockOrderRepository(),
		paymentOutbox:  testutil.NewMockOutboxStore(),
		approvalOutbox: testutil.NewMockOutboxStore(),
		events:         &testutil.MockEventPublisher{},
	}
	txm := testutil.NewMockTransactionManager(env.orders, env.paymentOutbox, env.approvalOutbox)
	paymentHelper := ordersaga.NewPaymentOutboxHelper(env.paymentOutbox)
	approvalHelper := ordersaga.NewApprovalOutboxHelper(env.approvalOutbox)
	env.paymentSaga = ordersaga.NewPaymentSaga(txm, env.orders, paymentHelper, approvalHelper, env.events, testutil.NopLogger())
	env.approvalSaga = ordersaga.NewApprovalSaga(txm, env.orders, paymentHelper, approvalHelper, env.events, testutil.NopLogger())
	return env
}

// seedPaymentOutbox stores a payment-outbox row for the saga in the given
// saga status, mirroring what create-order or a previous step wrote.
func (env *sagaEnv) seedPaymentOutbox(o *order.Order, sagaID uuid.UUID, status saga.Status) *outbox.Message {
	payload, _ := messaging.MarshalPayload(messaging.PaymentEventPayload{
		OrderID:            o.ID.String(),
		CustomerID:         o.CustomerID.String(),
		Price:              o.Price,
		CreatedAt:          o.CreatedAt,
		PaymentOrderStatus: messaging.PaymentOrderStatusPending,
	})
	msg := outbox.NewMessage(saga.OrderSagaName, sagaID, payload, o.Status, status, outbox.StatusStarted)
	env.paymentOutbox.AddMessage(msg)
	return msg
}

func (env *sagaEnv) seedApprovalOutbox(o *order.Order, sagaID uuid.UUID, status saga.Status) *outbox.Message {
	payload, _ := messaging.MarshalPayload(messaging.ApprovalEventPayload{
		OrderID:      o.ID.String(),
		RestaurantID: o.RestaurantID.String(),
		Price:        o.Price,
		CreatedAt:    o.CreatedAt,
	})
	msg := outbox.NewMessage(saga.OrderSagaName, sagaID, payload, o.Status, status, outbox.StatusStarted)
	env.approvalOutbox.AddMessage(msg)
	return msg
}

func TestPaymentSaga_Process_CompletedPayment(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	env.orders.AddOrder(o)
	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusStarted)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusCompleted, nil)
	require.NoError(t, env.paymentSaga.Process(context.Background(), resp))

	stored := env.orders.GetOrder(o.ID)
	require.NotNil(t, stored)
	assert.Equal(t, valueobject.OrderStatusPaid, stored.Status)

	paymentMsgs := env.paymentOutbox.Messages()
	require.Len(t, paymentMsgs, 1)
	assert.Equal(t, saga.StatusProcessing, paymentMsgs[0].SagaStatus)
	assert.NotNil(t, paymentMsgs[0].ProcessedAt)

	approvalMsgs := env.approvalOutbox.Messages()
	require.Len(t, approvalMsgs, 1)
	assert.Equal(t, saga.StatusProcessing, approvalMsgs[0].SagaStatus)
	assert.Equal(t, outbox.StatusStarted, approvalMsgs[0].OutboxStatus)

	var payload messaging.ApprovalEventPayload
	require.NoError(t, json.Unmarshal(approvalMsgs[0].Payload, &payload))
	assert.Equal(t, o.ID.String(), payload.OrderID)
	assert.Equal(t, messaging.RestaurantOrderStatusPaid, payload.RestaurantOrderStatus)

	require.Len(t, env.events.Paid, 1)
}

func TestPaymentSaga_Process_DuplicateResponseIsNoOp(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	env.orders.AddOrder(o)
	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusStarted)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusCompleted, nil)
	require.NoError(t, env.paymentSaga.Process(context.Background(), resp))
	require.NoError(t, env.paymentSaga.Process(context.Background(), resp))

	assert.Equal(t, valueobject.OrderStatusPaid, env.orders.GetOrder(o.ID).Status)
	assert.Len(t, env.approvalOutbox.Messages(), 1)
	assert.Len(t, env.events.Paid, 1)
}

func TestPaymentSaga_Rollback_FailedPaymentCancelsPendingOrder(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	env.orders.AddOrder(o)
	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusStarted)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusFailed,
		[]string{"customer does not have enough credit"})
	require.NoError(t, env.paymentSaga.Rollback(context.Background(), resp))

	stored := env.orders.GetOrder(o.ID)
	assert.Equal(t, valueobject.OrderStatusCancelled, stored.Status)
	assert.Contains(t, stored.FailureMessages, "customer does not have enough credit")

	msgs := env.paymentOutbox.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, saga.StatusCompensated, msgs[0].SagaStatus)
}

func TestPaymentSaga_Rollback_CancelledPaymentFinalizesCompensation(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	require.NoError(t, o.InitCancel([]string{"restaurant rejected the order"}))
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusProcessing)
	env.seedApprovalOutbox(o, sagaID, saga.StatusCompensating)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusCancelled, nil)
	require.NoError(t, env.paymentSaga.Rollback(context.Background(), resp))

	stored := env.orders.GetOrder(o.ID)
	assert.Equal(t, valueobject.OrderStatusCancelled, stored.Status)

	paymentMsgs := env.paymentOutbox.Messages()
	require.Len(t, paymentMsgs, 1)
	assert.Equal(t, saga.StatusCompensated, paymentMsgs[0].SagaStatus)

	approvalMsgs := env.approvalOutbox.Messages()
	require.Len(t, approvalMsgs, 1)
	assert.Equal(t, saga.StatusCompensated, approvalMsgs[0].SagaStatus)
}

func TestPaymentSaga_Rollback_CancelledWithoutApprovalRowIsProtocolViolation(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	require.NoError(t, o.InitCancel(nil))
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusCancelled, nil)
	err := env.paymentSaga.Rollback(context.Background(), resp)
	require.Error(t, err)

	// the failed transaction must leave the order and outbox untouched
	assert.Equal(t, valueobject.OrderStatusCancelling, env.orders.GetOrder(o.ID).Status)
	assert.Equal(t, saga.StatusProcessing, env.paymentOutbox.Messages()[0].SagaStatus)
}

func TestPaymentSaga_Rollback_DuplicateIsNoOp(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	env.orders.AddOrder(o)
	sagaID := uuid.New()
	// row already compensated: this response was applied before
	env.seedPaymentOutbox(o, sagaID, saga.StatusCompensated)

	resp := testutil.NewTestPaymentResponse(o.ID, sagaID, valueobject.PaymentStatusFailed, []string{"x"})
	require.NoError(t, env.paymentSaga.Rollback(context.Background(), resp))
	assert.Equal(t, valueobject.OrderStatusPending, env.orders.GetOrder(o.ID).Status)
}
