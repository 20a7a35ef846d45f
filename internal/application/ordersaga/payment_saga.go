package ordersaga

import (
	"context"
	"fmt"

	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/foodordering/system/internal/application/ordersaga")

// PaymentSaga is the order-side saga step driven by payment responses.
// Process applies payment-completed; Rollback applies payment-failed and
// payment-cancel-acknowledged.
type PaymentSaga struct {
	txm            TransactionManager
	helper         sagaHelper
	orderSvc       order.DomainService
	paymentOutbox  *PaymentOutboxHelper
	approvalOutbox *ApprovalOutboxHelper
	events         DomainEventPublisher
	log            zerolog.Logger
}

func NewPaymentSaga(
	txm TransactionManager,
	orders order.Repository,
	paymentOutbox *PaymentOutboxHelper,
	approvalOutbox *ApprovalOutboxHelper,
	events DomainEventPublisher,
	log zerolog.Logger,
) *PaymentSaga {
	return &PaymentSaga{
		txm:            txm,
		helper:         sagaHelper{orders: orders, log: log},
		paymentOutbox:  paymentOutbox,
		approvalOutbox: approvalOutbox,
		events:         events,
		log:            log,
	}
}

var _ saga.Step[messaging.PaymentResponse] = (*PaymentSaga)(nil)

// Process handles a completed payment: PENDING -> PAID, the payment-outbox
// row advances to PROCESSING and an approval-outbox row is written, all in
// one transaction with the order save.
func (s *PaymentSaga) Process(ctx context.Context, data messaging.PaymentResponse) error {
	ctx, span := tracer.Start(ctx, "payment-saga.process")
	defer span.End()

	sagaID, err := uuid.Parse(data.SagaID)
	if err != nil {
		return fmt.Errorf("parse saga id %q: %w", data.SagaID, err)
	}

	var paid *order.PaidEvent
	err = s.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		msg, err := s.paymentOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, saga.StatusStarted)
		if err != nil {
			return err
		}
		if msg == nil {
			s.log.Info().Str("saga_id", data.SagaID).Msg("outbox message is already processed")
			return nil
		}

		o, err := s.helper.findOrder(txCtx, data.OrderID)
		if err != nil {
			return err
		}
		paid, err = s.orderSvc.PayOrder(o)
		if err != nil {
			return err
		}
		if err := s.helper.saveOrder(txCtx, o); err != nil {
			return err
		}

		sagaStatus := OrderStatusToSagaStatus(o.Status)
		msg.MarkProcessed(o.Status, sagaStatus)
		if err := s.paymentOutbox.Save(txCtx, msg); err != nil {
			return err
		}
		return s.approvalOutbox.SaveApprovalOutboxMessage(txCtx,
			approvalEventPayload(o, paid.CreatedAt), o.Status, sagaStatus, outbox.StatusStarted, sagaID)
	})
	if err != nil {
		return err
	}

	if paid != nil {
		s.publishPaid(ctx, paid)
		s.log.Info().Str("order_id", data.OrderID).Msg("order is paid")
	}
	return nil
}

// Rollback handles payment-failed and payment-cancelled responses. A failed
// payment on a pending order cancels it directly; a cancelled payment
// acknowledges compensation and finalizes CANCELLING -> CANCELLED.
func (s *PaymentSaga) Rollback(ctx context.Context, data messaging.PaymentResponse) error {
	ctx, span := tracer.Start(ctx, "payment-saga.rollback")
	defer span.End()

	sagaID, err := uuid.Parse(data.SagaID)
	if err != nil {
		return fmt.Errorf("parse saga id %q: %w", data.SagaID, err)
	}

	return s.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		msg, err := s.paymentOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, expectedSagaStatuses(data.PaymentStatus)...)
		if err != nil {
			return err
		}
		if msg == nil {
			s.log.Info().Str("saga_id", data.SagaID).Msg("outbox message is already rolled back")
			return nil
		}

		o, err := s.helper.findOrder(txCtx, data.OrderID)
		if err != nil {
			return err
		}
		if err := s.orderSvc.CancelOrder(o, data.FailureMessages); err != nil {
			return err
		}
		if err := s.helper.saveOrder(txCtx, o); err != nil {
			return err
		}

		sagaStatus := OrderStatusToSagaStatus(o.Status)
		msg.MarkProcessed(o.Status, sagaStatus)
		if err := s.paymentOutbox.Save(txCtx, msg); err != nil {
			return err
		}

		// A cancelled payment completes a compensation that the approval saga
		// started; its outbox row must be finalized in the same transaction.
		if data.PaymentStatus == valueobject.PaymentStatusCancelled {
			approvalMsg, err := s.approvalOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, saga.StatusCompensating)
			if err != nil {
				return err
			}
			if approvalMsg == nil {
				return domainErrProtocol(fmt.Sprintf(
					"approval outbox message for saga %s cannot be found in %s state", data.SagaID, saga.StatusCompensating))
			}
			approvalMsg.MarkProcessed(o.Status, sagaStatus)
			if err := s.approvalOutbox.Save(txCtx, approvalMsg); err != nil {
				return err
			}
		}

		s.log.Info().Str("order_id", data.OrderID).Str("order_status", string(o.Status)).
			Msg("order is cancelled")
		return nil
	})
}

func (s *PaymentSaga) publishPaid(ctx context.Context, event *order.PaidEvent) {
	err := s.events.PublishOrderPaid(ctx, messaging.OrderPaid{
		OrderID:   event.Order.ID.String(),
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_id", event.Order.ID.String()).
			Msg("could not publish order paid event")
	}
}

// expectedSagaStatuses gives the saga statuses a rollback-triggering payment
// response may find its outbox row in. Anything else means the response is a
// duplicate of an already-applied step.
func expectedSagaStatuses(status valueobject.PaymentStatus) []saga.Status {
	switch status {
	case valueobject.PaymentStatusCompleted:
		return []saga.Status{saga.StatusStarted}
	case valueobject.PaymentStatusCancelled:
		return []saga.Status{saga.StatusProcessing}
	default: // FAILED
		return []saga.Status{saga.StatusStarted, saga.StatusProcessing}
	}
}
