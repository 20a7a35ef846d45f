// Package paymentflow is the payment service's application layer. It turns
// inbound payment requests into payment aggregates and double-entry ledger
// mutations, and records the outcome in the response outbox within the same
// transaction.
package paymentflow

import (
	"context"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/foodordering/system/internal/application/paymentflow")

// RequestHandler processes payment requests from the order service. Both
// operations are idempotent: a request whose saga id already has a recorded
// outcome is logged and dropped.
type RequestHandler struct {
	txm        TransactionManager
	payments   payment.Repository
	credits    payment.CreditRepository
	respOutbox *ResponseOutboxHelper
	paymentSvc payment.DomainService
	log        zerolog.Logger
}

func NewRequestHandler(
	txm TransactionManager,
	payments payment.Repository,
	credits payment.CreditRepository,
	respOutbox *ResponseOutboxHelper,
	log zerolog.Logger,
) *RequestHandler {
	return &RequestHandler{
		txm:        txm,
		payments:   payments,
		credits:    credits,
		respOutbox: respOutbox,
		log:        log,
	}
}

// PersistPayment completes the payment for a pending order: it debits the
// customer's credit, appends the DEBIT ledger record and records a COMPLETED
// response. On any business failure the payment is saved as FAILED, the
// ledger is left untouched and the failure messages travel in the response.
func (h *RequestHandler) PersistPayment(ctx context.Context, req messaging.PaymentRequest) error {
	ctx, span := tracer.Start(ctx, "persist-payment")
	defer span.End()

	sagaID, orderID, customerID, err := parseRequestIDs(req.SagaID, req.OrderID, req.CustomerID)
	if err != nil {
		return err
	}

	return h.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		recorded, err := h.respOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID,
			saga.StatusProcessing, saga.StatusFailed)
		if err != nil {
			return err
		}
		if recorded != nil {
			h.log.Info().Str("saga_id", req.SagaID).Msg("outbox message is already saved")
			return nil
		}

		p := payment.New(orderID, customerID, req.Price)
		entry, history, err := h.loadLedger(txCtx, customerID)
		if err != nil {
			return err
		}

		event := h.paymentSvc.ValidateAndInitiatePayment(p, entry, history)
		if err := h.persistOutcome(txCtx, event); err != nil {
			return err
		}
		if err := h.respOutbox.SaveResponseOutboxMessage(txCtx, event, req.PaymentOrderStatus, sagaID); err != nil {
			return err
		}

		h.logOutcome(event, "payment is completed")
		return nil
	})
}

// PersistCancelPayment reverses a completed payment during saga compensation:
// the price returns to the customer's credit and a CREDIT ledger record is
// appended, mirroring the original DEBIT.
func (h *RequestHandler) PersistCancelPayment(ctx context.Context, req messaging.PaymentRequest) error {
	ctx, span := tracer.Start(ctx, "persist-cancel-payment")
	defer span.End()

	sagaID, orderID, customerID, err := parseRequestIDs(req.SagaID, req.OrderID, req.CustomerID)
	if err != nil {
		return err
	}

	return h.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		recorded, err := h.respOutbox.GetBySagaIDAndSagaStatus(txCtx, sagaID,
			saga.StatusCompensated, saga.StatusFailed)
		if err != nil {
			return err
		}
		if recorded != nil {
			h.log.Info().Str("saga_id", req.SagaID).Msg("outbox message is already saved")
			return nil
		}

		p, err := h.payments.FindByOrderID(txCtx, orderID)
		if err != nil {
			return fmt.Errorf("find payment for order %s: %w", req.OrderID, err)
		}
		if p == nil {
			h.log.Error().Str("order_id", req.OrderID).Msg("payment could not be found")
			return fmt.Errorf("payment for order %s: %w", req.OrderID, domainErrors.ErrPaymentNotFound)
		}

		entry, history, err := h.loadLedger(txCtx, customerID)
		if err != nil {
			return err
		}

		event := h.paymentSvc.ValidateAndCancelPayment(p, entry, history)
		if err := h.persistOutcome(txCtx, event); err != nil {
			return err
		}
		if err := h.respOutbox.SaveResponseOutboxMessage(txCtx, event, req.PaymentOrderStatus, sagaID); err != nil {
			return err
		}

		h.logOutcome(event, "payment is cancelled")
		return nil
	})
}

// persistOutcome saves the payment and, only when the attempt produced no
// failures, the mutated credit entry plus the new ledger record.
func (h *RequestHandler) persistOutcome(ctx context.Context, event *payment.Event) error {
	if err := h.payments.Save(ctx, event.Payment); err != nil {
		return fmt.Errorf("save payment %s: %w", event.Payment.ID, err)
	}
	if len(event.FailureMessages) > 0 {
		return nil
	}
	if err := h.credits.SaveEntry(ctx, event.CreditEntry); err != nil {
		return fmt.Errorf("save credit entry for customer %s: %w", event.CreditEntry.CustomerID, err)
	}
	if err := h.credits.AppendHistory(ctx, event.HistoryRecord); err != nil {
		return fmt.Errorf("append credit history for customer %s: %w", event.HistoryRecord.CustomerID, err)
	}
	return nil
}

func (h *RequestHandler) loadLedger(ctx context.Context, customerID uuid.UUID) (*payment.CreditEntry, []*payment.CreditHistory, error) {
	entry, err := h.credits.FindEntryByCustomerID(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("find credit entry for customer %s: %w", customerID, err)
	}
	if entry == nil {
		return nil, nil, fmt.Errorf("credit entry for customer %s: %w", customerID, domainErrors.ErrCreditEntryNotFound)
	}
	history, err := h.credits.FindHistoryByCustomerID(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("find credit history for customer %s: %w", customerID, err)
	}
	return entry, history, nil
}

func (h *RequestHandler) logOutcome(event *payment.Event, completedMsg string) {
	if len(event.FailureMessages) > 0 {
		h.log.Warn().
			Str("order_id", event.Payment.OrderID.String()).
			Strs("failure_messages", event.FailureMessages).
			Msg("payment attempt failed")
		return
	}
	h.log.Info().
		Str("order_id", event.Payment.OrderID.String()).
		Str("payment_id", event.Payment.ID.String()).
		Msg(completedMsg)
}

func parseRequestIDs(sagaID, orderID, customerID string) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	sid, err := uuid.Parse(sagaID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, domainErrors.NewValidationError("saga_id", "not a valid uuid: "+sagaID)
	}
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, domainErrors.NewValidationError("order_id", "not a valid uuid: "+orderID)
	}
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, domainErrors.NewValidationError("customer_id", "not a valid uuid: "+customerID)
	}
	return sid, oid, cid, nil
}
