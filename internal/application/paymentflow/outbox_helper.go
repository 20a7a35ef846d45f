package paymentflow

import (
	"context"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
)

// PaymentStatusToSagaStatus is the payment service's view of the saga: a
// COMPLETED payment leaves the saga mid-flight, a CANCELLED one means the
// compensation is done, a FAILED one fails the saga. Response-outbox rows are
// stored under this status, which is what makes duplicate requests for the
// same saga id detectable.
func PaymentStatusToSagaStatus(status valueobject.PaymentStatus) saga.Status {
	switch status {
	case valueobject.PaymentStatusCompleted:
		return saga.StatusProcessing
	case valueobject.PaymentStatusCancelled:
		return saga.StatusCompensated
	default:
		return saga.StatusFailed
	}
}

// ResponseOutboxHelper wraps the payment service's response-outbox store with
// the saga name and the payment-status based saga statuses.
type ResponseOutboxHelper struct {
	store outbox.Store
}

func NewResponseOutboxHelper(store outbox.Store) *ResponseOutboxHelper {
	return &ResponseOutboxHelper{store: store}
}

func (h *ResponseOutboxHelper) GetBySagaIDAndSagaStatus(ctx context.Context, sagaID uuid.UUID, statuses ...saga.Status) (*outbox.Message, error) {
	return h.store.FindBySagaIDAndSagaStatus(ctx, saga.OrderSagaName, sagaID, statuses...)
}

func (h *ResponseOutboxHelper) GetByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) ([]*outbox.Message, error) {
	return h.store.FindByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}

func (h *ResponseOutboxHelper) Save(ctx context.Context, msg *outbox.Message) error {
	if err := h.store.Save(ctx, msg); err != nil {
		return domainErrors.NewDomainError("outbox_save_failed",
			"could not save payment response outbox message with id "+msg.ID.String(), err)
	}
	return nil
}

// SaveResponseOutboxMessage records a payment outcome for later publication.
// The row's order status mirrors the intent of the inbound request and its
// saga status derives from the payment outcome.
func (h *ResponseOutboxHelper) SaveResponseOutboxMessage(ctx context.Context, event *payment.Event, requestStatus messaging.PaymentOrderStatus, sagaID uuid.UUID) error {
	payload := messaging.PaymentResponsePayload{
		OrderID:         event.Payment.OrderID.String(),
		PaymentID:       event.Payment.ID.String(),
		CustomerID:      event.Payment.CustomerID.String(),
		Price:           event.Payment.Price,
		CreatedAt:       event.CreatedAt,
		PaymentStatus:   event.Payment.Status,
		FailureMessages: event.FailureMessages,
	}
	raw, err := messaging.MarshalPayload(payload)
	if err != nil {
		return err
	}
	return h.Save(ctx, outbox.NewMessage(saga.OrderSagaName, sagaID, raw,
		valueobject.OrderStatus(requestStatus),
		PaymentStatusToSagaStatus(event.Payment.Status),
		outbox.StatusStarted))
}

func (h *ResponseOutboxHelper) DeleteByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) error {
	return h.store.DeleteByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}
