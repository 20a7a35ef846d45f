package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foodordering/system/internal/domain/outbox"
)

// The outbox publishers adapt stored payloads to wire messages for the
// scheduler. The outbox row id becomes the message id and the saga id becomes
// the key, so responses can be correlated and partitioned per saga.

// PaymentRequestPublisher publishes payment-outbox rows as payment requests.
type PaymentRequestPublisher struct {
	producer ProducerPort
	topic    string
}

func NewPaymentRequestPublisher(producer ProducerPort, topic string) *PaymentRequestPublisher {
	return &PaymentRequestPublisher{producer: producer, topic: topic}
}

func (p *PaymentRequestPublisher) Publish(ctx context.Context, msg *outbox.Message) error {
	var payload PaymentEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payment outbox payload %s: %w", msg.ID, err)
	}
	req := PaymentRequest{
		ID:                 msg.ID.String(),
		SagaID:             msg.SagaID.String(),
		OrderID:            payload.OrderID,
		CustomerID:         payload.CustomerID,
		Price:              payload.Price,
		CreatedAt:          payload.CreatedAt,
		PaymentOrderStatus: payload.PaymentOrderStatus,
	}
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal payment request %s: %w", msg.ID, err)
	}
	return p.producer.Produce(ctx, p.topic, []byte(req.SagaID), value)
}

// ApprovalRequestPublisher publishes approval-outbox rows as restaurant
// approval requests.
type ApprovalRequestPublisher struct {
	producer ProducerPort
	topic    string
}

func NewApprovalRequestPublisher(producer ProducerPort, topic string) *ApprovalRequestPublisher {
	return &ApprovalRequestPublisher{producer: producer, topic: topic}
}

func (p *ApprovalRequestPublisher) Publish(ctx context.Context, msg *outbox.Message) error {
	var payload ApprovalEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal approval outbox payload %s: %w", msg.ID, err)
	}
	req := RestaurantApprovalRequest{
		ID:                    msg.ID.String(),
		SagaID:                msg.SagaID.String(),
		OrderID:               payload.OrderID,
		RestaurantID:          payload.RestaurantID,
		Products:              payload.Products,
		Price:                 payload.Price,
		CreatedAt:             payload.CreatedAt,
		RestaurantOrderStatus: payload.RestaurantOrderStatus,
	}
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal approval request %s: %w", msg.ID, err)
	}
	return p.producer.Produce(ctx, p.topic, []byte(req.SagaID), value)
}

// PaymentResponsePublisher publishes the payment service's response-outbox
// rows back to the order service.
type PaymentResponsePublisher struct {
	producer ProducerPort
	topic    string
}

func NewPaymentResponsePublisher(producer ProducerPort, topic string) *PaymentResponsePublisher {
	return &PaymentResponsePublisher{producer: producer, topic: topic}
}

func (p *PaymentResponsePublisher) Publish(ctx context.Context, msg *outbox.Message) error {
	var payload PaymentResponsePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payment response payload %s: %w", msg.ID, err)
	}
	resp := PaymentResponse{
		ID:              msg.ID.String(),
		SagaID:          msg.SagaID.String(),
		OrderID:         payload.OrderID,
		PaymentID:       payload.PaymentID,
		CustomerID:      payload.CustomerID,
		Price:           payload.Price,
		CreatedAt:       payload.CreatedAt,
		PaymentStatus:   payload.PaymentStatus,
		FailureMessages: payload.FailureMessages,
	}
	value, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal payment response %s: %w", msg.ID, err)
	}
	return p.producer.Produce(ctx, p.topic, []byte(resp.SagaID), value)
}
