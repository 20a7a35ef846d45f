package messaging

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/foodordering/system/internal/domain/customer"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// The listeners decode broker messages and dispatch them to the application
// layer. A decode failure acknowledges the message: redelivering a malformed
// payload can never succeed. An optimistic-lock conflict also acknowledges:
// another instance already handled this delivery, and the idempotency checks
// make a second pass a no-op anyway. Everything else propagates so the
// message is redelivered.

func shouldDrop(err error) bool {
	return errors.Is(err, domainErrors.ErrOptimisticLockFailed) ||
		errors.Is(err, domainErrors.ErrOrderNotFound) ||
		errors.Is(err, domainErrors.ErrPaymentNotFound)
}

// PaymentResponseListener feeds payment responses into the order saga.
type PaymentResponseListener struct {
	step saga.Step[PaymentResponse]
	log  zerolog.Logger
}

func NewPaymentResponseListener(step saga.Step[PaymentResponse], log zerolog.Logger) *PaymentResponseListener {
	return &PaymentResponseListener{step: step, log: log}
}

func (l *PaymentResponseListener) Handle(ctx context.Context, message []byte) error {
	var resp PaymentResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		l.log.Error().Err(err).Msg("could not decode payment response, dropping")
		return nil
	}

	var err error
	switch resp.PaymentStatus {
	case valueobject.PaymentStatusCompleted:
		err = l.step.Process(ctx, resp)
	case valueobject.PaymentStatusCancelled, valueobject.PaymentStatusFailed:
		err = l.step.Rollback(ctx, resp)
	default:
		l.log.Error().Str("payment_status", string(resp.PaymentStatus)).
			Str("saga_id", resp.SagaID).Msg("unknown payment status, dropping")
		return nil
	}
	if err != nil && shouldDrop(err) {
		l.log.Warn().Err(err).Str("saga_id", resp.SagaID).Msg("dropping payment response")
		return nil
	}
	return err
}

// ApprovalResponseListener feeds restaurant approval responses into the order saga.
type ApprovalResponseListener struct {
	step saga.Step[RestaurantApprovalResponse]
	log  zerolog.Logger
}

func NewApprovalResponseListener(step saga.Step[RestaurantApprovalResponse], log zerolog.Logger) *ApprovalResponseListener {
	return &ApprovalResponseListener{step: step, log: log}
}

func (l *ApprovalResponseListener) Handle(ctx context.Context, message []byte) error {
	var resp RestaurantApprovalResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		l.log.Error().Err(err).Msg("could not decode approval response, dropping")
		return nil
	}

	var err error
	switch resp.OrderApprovalStatus {
	case valueobject.OrderApprovalStatusApproved:
		err = l.step.Process(ctx, resp)
	case valueobject.OrderApprovalStatusRejected:
		err = l.step.Rollback(ctx, resp)
	default:
		l.log.Error().Str("approval_status", string(resp.OrderApprovalStatus)).
			Str("saga_id", resp.SagaID).Msg("unknown approval status, dropping")
		return nil
	}
	if err != nil && shouldDrop(err) {
		l.log.Warn().Err(err).Str("saga_id", resp.SagaID).Msg("dropping approval response")
		return nil
	}
	return err
}

// PaymentRequestProcessor is the payment service's application surface.
type PaymentRequestProcessor interface {
	PersistPayment(ctx context.Context, req PaymentRequest) error
	PersistCancelPayment(ctx context.Context, req PaymentRequest) error
}

// PaymentRequestListener feeds payment requests into the payment service.
type PaymentRequestListener struct {
	processor PaymentRequestProcessor
	log       zerolog.Logger
}

func NewPaymentRequestListener(processor PaymentRequestProcessor, log zerolog.Logger) *PaymentRequestListener {
	return &PaymentRequestListener{processor: processor, log: log}
}

func (l *PaymentRequestListener) Handle(ctx context.Context, message []byte) error {
	var req PaymentRequest
	if err := json.Unmarshal(message, &req); err != nil {
		l.log.Error().Err(err).Msg("could not decode payment request, dropping")
		return nil
	}

	var err error
	switch req.PaymentOrderStatus {
	case PaymentOrderStatusPending:
		err = l.processor.PersistPayment(ctx, req)
	case PaymentOrderStatusCancelled:
		err = l.processor.PersistCancelPayment(ctx, req)
	default:
		l.log.Error().Str("payment_order_status", string(req.PaymentOrderStatus)).
			Str("saga_id", req.SagaID).Msg("unknown payment order status, dropping")
		return nil
	}
	if err != nil && shouldDrop(err) {
		l.log.Warn().Err(err).Str("saga_id", req.SagaID).Msg("dropping payment request")
		return nil
	}
	return err
}

// ApprovalRequestProcessor is the restaurant service's application surface.
type ApprovalRequestProcessor interface {
	ProcessApproval(ctx context.Context, req RestaurantApprovalRequest) error
}

// ApprovalRequestListener feeds approval requests into the restaurant service.
type ApprovalRequestListener struct {
	processor ApprovalRequestProcessor
	log       zerolog.Logger
}

func NewApprovalRequestListener(processor ApprovalRequestProcessor, log zerolog.Logger) *ApprovalRequestListener {
	return &ApprovalRequestListener{processor: processor, log: log}
}

func (l *ApprovalRequestListener) Handle(ctx context.Context, message []byte) error {
	var req RestaurantApprovalRequest
	if err := json.Unmarshal(message, &req); err != nil {
		l.log.Error().Err(err).Msg("could not decode approval request, dropping")
		return nil
	}
	if err := l.processor.ProcessApproval(ctx, req); err != nil {
		if errors.Is(err, domainErrors.ErrRestaurantNotFound) {
			l.log.Warn().Err(err).Str("saga_id", req.SagaID).Msg("dropping approval request")
			return nil
		}
		return err
	}
	return nil
}

// CustomerCreatedListener maintains the order service's customer replica.
type CustomerCreatedListener struct {
	customers customer.Repository
	log       zerolog.Logger
}

func NewCustomerCreatedListener(customers customer.Repository, log zerolog.Logger) *CustomerCreatedListener {
	return &CustomerCreatedListener{customers: customers, log: log}
}

func (l *CustomerCreatedListener) Handle(ctx context.Context, message []byte) error {
	var event CustomerCreated
	if err := json.Unmarshal(message, &event); err != nil {
		l.log.Error().Err(err).Msg("could not decode customer created event, dropping")
		return nil
	}
	id, err := uuid.Parse(event.ID)
	if err != nil {
		l.log.Error().Str("customer_id", event.ID).Msg("invalid customer id, dropping")
		return nil
	}
	return l.customers.Save(ctx, &customer.Customer{
		ID:        id,
		Username:  event.Username,
		FirstName: event.FirstName,
		LastName:  event.LastName,
	})
}
