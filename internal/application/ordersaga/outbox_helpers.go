package ordersaga

import (
	"context"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
)

// PaymentOutboxHelper is the typed wrapper over the payment-outbox table: the
// messages the order service sends to the payment service (payment requests
// and compensating cancel requests).
type PaymentOutboxHelper struct {
	store outbox.Store
}

func NewPaymentOutboxHelper(store outbox.Store) *PaymentOutboxHelper {
	return &PaymentOutboxHelper{store: store}
}

func (h *PaymentOutboxHelper) GetBySagaIDAndSagaStatus(ctx context.Context, sagaID uuid.UUID, statuses ...saga.Status) (*outbox.Message, error) {
	return h.store.FindBySagaIDAndSagaStatus(ctx, saga.OrderSagaName, sagaID, statuses...)
}

func (h *PaymentOutboxHelper) GetByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) ([]*outbox.Message, error) {
	return h.store.FindByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}

// Save persists the message. A failed save here is a protocol violation: the
// caller's transaction depends on this row being written.
func (h *PaymentOutboxHelper) Save(ctx context.Context, msg *outbox.Message) error {
	if err := h.store.Save(ctx, msg); err != nil {
		return domainErrors.NewDomainError("outbox_save_failed",
			fmt.Sprintf("could not save payment outbox message %s", msg.ID), err)
	}
	return nil
}

// SavePaymentOutboxMessage writes a fresh payment-outbox row for the saga.
func (h *PaymentOutboxHelper) SavePaymentOutboxMessage(ctx context.Context, payload messaging.PaymentEventPayload,
	orderStatus valueobject.OrderStatus, sagaStatus saga.Status, outboxStatus outbox.Status, sagaID uuid.UUID) error {
	raw, err := messaging.MarshalPayload(payload)
	if err != nil {
		return domainErrors.NewDomainError("outbox_payload_invalid",
			fmt.Sprintf("could not serialize payment event payload for order %s", payload.OrderID), err)
	}
	return h.Save(ctx, outbox.NewMessage(saga.OrderSagaName, sagaID, raw, orderStatus, sagaStatus, outboxStatus))
}

func (h *PaymentOutboxHelper) DeleteByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) error {
	return h.store.DeleteByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}

// ApprovalOutboxHelper is the typed wrapper over the approval-outbox table:
// the approval requests the order service sends to the restaurant service.
type ApprovalOutboxHelper struct {
	store outbox.Store
}

func NewApprovalOutboxHelper(store outbox.Store) *ApprovalOutboxHelper {
	return &ApprovalOutboxHelper{store: store}
}

func (h *ApprovalOutboxHelper) GetBySagaIDAndSagaStatus(ctx context.Context, sagaID uuid.UUID, statuses ...saga.Status) (*outbox.Message, error) {
	return h.store.FindBySagaIDAndSagaStatus(ctx, saga.OrderSagaName, sagaID, statuses...)
}

func (h *ApprovalOutboxHelper) GetByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) ([]*outbox.Message, error) {
	return h.store.FindByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}

func (h *ApprovalOutboxHelper) Save(ctx context.Context, msg *outbox.Message) error {
	if err := h.store.Save(ctx, msg); err != nil {
		return domainErrors.NewDomainError("outbox_save_failed",
			fmt.Sprintf("could not save approval outbox message %s", msg.ID), err)
	}
	return nil
}

// SaveApprovalOutboxMessage writes a fresh approval-outbox row for the saga.
func (h *ApprovalOutboxHelper) SaveApprovalOutboxMessage(ctx context.Context, payload messaging.ApprovalEventPayload,
	orderStatus valueobject.OrderStatus, sagaStatus saga.Status, outboxStatus outbox.Status, sagaID uuid.UUID) error {
	raw, err := messaging.MarshalPayload(payload)
	if err != nil {
		return domainErrors.NewDomainError("outbox_payload_invalid",
			fmt.Sprintf("could not serialize approval event payload for order %s", payload.OrderID), err)
	}
	return h.Save(ctx, outbox.NewMessage(saga.OrderSagaName, sagaID, raw, orderStatus, sagaStatus, outboxStatus))
}

func (h *ApprovalOutboxHelper) DeleteByOutboxStatusAndSagaStatus(ctx context.Context, outboxStatus outbox.Status, statuses ...saga.Status) error {
	return h.store.DeleteByOutboxStatusAndSagaStatus(ctx, saga.OrderSagaName, outboxStatus, statuses...)
}
