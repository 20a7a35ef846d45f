package ordersaga_test

import (
	"context"
	"encoding/json"
	"testing"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/internal/testutil"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalSaga_Process_ApprovedOrder(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusProcessing)
	env.seedApprovalOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusApproved, nil)
	require.NoError(t, env.approvalSaga.Process(context.Background(), resp))

	stored := env.orders.GetOrder(o.ID)
	assert.Equal(t, valueobject.OrderStatusApproved, stored.Status)

	paymentMsgs := env.paymentOutbox.Messages()
	require.Len(t, paymentMsgs, 1)
	assert.Equal(t, saga.StatusSucceeded, paymentMsgs[0].SagaStatus)

	approvalMsgs := env.approvalOutbox.Messages()
	require.Len(t, approvalMsgs, 1)
	assert.Equal(t, saga.StatusSucceeded, approvalMsgs[0].SagaStatus)
}

func TestApprovalSaga_Process_DuplicateResponseIsNoOp(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusProcessing)
	env.seedApprovalOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusApproved, nil)
	require.NoError(t, env.approvalSaga.Process(context.Background(), resp))
	require.NoError(t, env.approvalSaga.Process(context.Background(), resp))

	assert.Equal(t, valueobject.OrderStatusApproved, env.orders.GetOrder(o.ID).Status)
}

func TestApprovalSaga_Process_MissingPaymentRowIsProtocolViolation(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedApprovalOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusApproved, nil)
	err := env.approvalSaga.Process(context.Background(), resp)
	require.Error(t, err)

	var domainErr *domainErrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "saga_protocol_violation", domainErr.Code)

	// the failed transaction leaves the order in PAID
	assert.Equal(t, valueobject.OrderStatusPaid, env.orders.GetOrder(o.ID).Status)
	assert.Equal(t, saga.StatusProcessing, env.approvalOutbox.Messages()[0].SagaStatus)
}

func TestApprovalSaga_Rollback_RejectionStartsCompensation(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedPaymentOutbox(o, sagaID, saga.StatusProcessing)
	env.seedApprovalOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusRejected,
		[]string{"product is not available"})
	require.NoError(t, env.approvalSaga.Rollback(context.Background(), resp))

	stored := env.orders.GetOrder(o.ID)
	assert.Equal(t, valueobject.OrderStatusCancelling, stored.Status)
	assert.Contains(t, stored.FailureMessages, "product is not available")

	approvalMsgs := env.approvalOutbox.Messages()
	require.Len(t, approvalMsgs, 1)
	assert.Equal(t, saga.StatusCompensating, approvalMsgs[0].SagaStatus)

	// a fresh payment-outbox row now carries the cancel-payment request
	paymentMsgs := env.paymentOutbox.Messages()
	require.Len(t, paymentMsgs, 2)
	var cancelMsg *outbox.Message
	for _, msg := range paymentMsgs {
		if msg.SagaStatus == saga.StatusCompensating {
			cancelMsg = msg
		}
	}
	require.NotNil(t, cancelMsg)
	assert.Equal(t, outbox.StatusStarted, cancelMsg.OutboxStatus)

	var payload messaging.PaymentEventPayload
	require.NoError(t, json.Unmarshal(cancelMsg.Payload, &payload))
	assert.Equal(t, messaging.PaymentOrderStatusCancelled, payload.PaymentOrderStatus)
	assert.Equal(t, o.ID.String(), payload.OrderID)

	require.Len(t, env.events.Cancelled, 1)
}

func TestApprovalSaga_Rollback_DuplicateIsNoOp(t *testing.T) {
	env := setupSagaEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.orders.AddOrder(o)

	sagaID := uuid.New()
	env.seedApprovalOutbox(o, sagaID, saga.StatusCompensating)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusRejected, []string{"x"})
	require.NoError(t, env.approvalSaga.Rollback(context.Background(), resp))

	assert.Equal(t, valueobject.OrderStatusPaid, env.orders.GetOrder(o.ID).Status)
	assert.Empty(t, env.paymentOutbox.Messages())
	assert.Empty(t, env.events.Cancelled)
}

func TestApprovalSaga_UnknownOrderPropagates(t *testing.T) {
	env := setupSagaEnv()
	sagaID := uuid.New()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.seedApprovalOutbox(o, sagaID, saga.StatusProcessing)

	resp := testutil.NewTestApprovalResponse(o.ID, sagaID, valueobject.OrderApprovalStatusApproved, nil)
	err := env.approvalSaga.Process(context.Background(), resp)
	assert.ErrorIs(t, err, domainErrors.ErrOrderNotFound)
}
