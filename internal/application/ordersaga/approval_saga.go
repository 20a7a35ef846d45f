package ordersaga

import (
	"context"
	"fmt"

	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ApprovalSaga is the order-side saga step driven by restaurant approval
// responses. Process finalizes an approved order; Rollback starts
// compensation for a rejected one.
type ApprovalSaga struct {
	txm            TransactionManager
	helper         sagaHelper
	orderSvc       order.DomainService
	paymentOutbox  *PaymentOutboxHelper
	approvalOutbox *ApprovalOutboxHelper
	events         DomainEventPublisher
	log            zerolog.Logger
}

func NewApprovalSaga(
	txm TransactionManager,
	orders order.Repository,
	paymentOutbox *PaymentOutboxHelper,
	approvalOutbox *ApprovalOutboxHelper,
	events DomainEventPublisher,
	log zerolog.Logger,
) *ApprovalSaga {
	return &ApprovalSaga{
		txm:            txm,
		helper:         sagaHelper{orders: orders, log: log},
		paymentOutbox:  paymentOutbox,
		approvalOutbox: approvalOutbox,
		events:         events,
		log:            log,
	}
}

var _ saga.Step[messaging.RestaurantApprovalResponse] = (*ApprovalSaga)(nil)

// Process handles an approved order: PAID -> APPROVED. Both outbox rows for
// the saga advance to SUCCEEDED in the same transaction as the order save.
// The payment-outbox row must exist in PROCESSING; its absence is a protocol
// violation, not a duplicate.
func (s *ApprovalSaga) Process(ctx context.Context, data messaging.RestaurantApprovalResponse) error {
	ctx, span := tracer.Start(ctx, "approval-saga.process")
	defer span.End()

	sagaID, err := uuid.Parse(data.SagaID)
	if err != nil {
		return fmt.Errorf("parse saga id %q: %w", data.SagaID, err)
	}

	return s.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		approvalMsg, err := s.approvalOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, saga.StatusProcessing)
		if err != nil {
			return err
		}
		if approvalMsg == nil {
			s.log.Info().Str("saga_id", data.SagaID).Msg("outbox message is already processed")
			return nil
		}

		o, err := s.helper.findOrder(txCtx, data.OrderID)
		if err != nil {
			return err
		}
		if err := s.orderSvc.ApproveOrder(o); err != nil {
			return err
		}
		if err := s.helper.saveOrder(txCtx, o); err != nil {
			return err
		}

		sagaStatus := OrderStatusToSagaStatus(o.Status)
		approvalMsg.MarkProcessed(o.Status, sagaStatus)
		if err := s.approvalOutbox.Save(txCtx, approvalMsg); err != nil {
			return err
		}

		paymentMsg, err := s.paymentOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, saga.StatusProcessing)
		if err != nil {
			return err
		}
		if paymentMsg == nil {
			return domainErrProtocol(fmt.Sprintf(
				"payment outbox message for saga %s cannot be found in %s state", data.SagaID, saga.StatusProcessing))
		}
		paymentMsg.MarkProcessed(o.Status, sagaStatus)
		if err := s.paymentOutbox.Save(txCtx, paymentMsg); err != nil {
			return err
		}

		s.log.Info().Str("order_id", data.OrderID).Msg("order is approved")
		return nil
	})
}

// Rollback handles a rejected order: PAID -> CANCELLING. The approval-outbox
// row advances to COMPENSATING and a fresh payment-outbox row carrying the
// cancel-payment request is written, all in one transaction.
func (s *ApprovalSaga) Rollback(ctx context.Context, data messaging.RestaurantApprovalResponse) error {
	ctx, span := tracer.Start(ctx, "approval-saga.rollback")
	defer span.End()

	sagaID, err := uuid.Parse(data.SagaID)
	if err != nil {
		return fmt.Errorf("parse saga id %q: %w", data.SagaID, err)
	}

	var cancelled *order.CancelledEvent
	err = s.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		approvalMsg, err := s.approvalOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID, saga.StatusProcessing)
		if err != nil {
			return err
		}
		if approvalMsg == nil {
			s.log.Info().Str("saga_id", data.SagaID).Msg("outbox message is already rolled back")
			return nil
		}

		o, err := s.helper.findOrder(txCtx, data.OrderID)
		if err != nil {
			return err
		}
		cancelled, err = s.orderSvc.CancelOrderPayment(o, data.FailureMessages)
		if err != nil {
			return err
		}
		if err := s.helper.saveOrder(txCtx, o); err != nil {
			return err
		}

		sagaStatus := OrderStatusToSagaStatus(o.Status)
		approvalMsg.MarkProcessed(o.Status, sagaStatus)
		if err := s.approvalOutbox.Save(txCtx, approvalMsg); err != nil {
			return err
		}
		return s.paymentOutbox.SavePaymentOutboxMessage(txCtx,
			paymentEventPayload(o, messaging.PaymentOrderStatusCancelled, cancelled.CreatedAt),
			o.Status, sagaStatus, outbox.StatusStarted, sagaID)
	})
	if err != nil {
		return err
	}

	if cancelled != nil {
		s.publishCancelled(ctx, cancelled)
		s.log.Info().Str("order_id", data.OrderID).Msg("order is cancelling")
	}
	return nil
}

func (s *ApprovalSaga) publishCancelled(ctx context.Context, event *order.CancelledEvent) {
	err := s.events.PublishOrderCancelled(ctx, messaging.OrderCancelled{
		OrderID:         event.Order.ID.String(),
		FailureMessages: event.Order.FailureMessages,
		CreatedAt:       event.CreatedAt,
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_id", event.Order.ID.String()).
			Msg("could not publish order cancelled event")
	}
}
