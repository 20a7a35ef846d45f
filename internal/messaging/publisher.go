package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foodordering/system/internal/infrastructure/config"
)

// ProducerPort is the broker write surface the publishers depend on.
type ProducerPort interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// EventPublisher publishes the order service's own domain events and the
// restaurant service's approval responses. These bypass the outbox: order
// events are informational, and approval responses are recomputed on
// redelivery.
type EventPublisher struct {
	producer ProducerPort
	topics   config.TopicsConfig
}

func NewEventPublisher(producer ProducerPort, topics config.TopicsConfig) *EventPublisher {
	return &EventPublisher{producer: producer, topics: topics}
}

func (p *EventPublisher) PublishOrderCreated(ctx context.Context, event OrderCreated) error {
	return p.publish(ctx, p.topics.OrderEvents, event.OrderID, event)
}

func (p *EventPublisher) PublishOrderPaid(ctx context.Context, event OrderPaid) error {
	return p.publish(ctx, p.topics.OrderEvents, event.OrderID, event)
}

func (p *EventPublisher) PublishOrderCancelled(ctx context.Context, event OrderCancelled) error {
	return p.publish(ctx, p.topics.OrderEvents, event.OrderID, event)
}

func (p *EventPublisher) PublishApprovalResponse(ctx context.Context, resp RestaurantApprovalResponse) error {
	return p.publish(ctx, p.topics.ApprovalResponse, resp.SagaID, resp)
}

func (p *EventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreated) error {
	return p.publish(ctx, p.topics.CustomerCreated, event.ID, event)
}

func (p *EventPublisher) publish(ctx context.Context, topic, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", topic, err)
	}
	return p.producer.Produce(ctx, topic, []byte(key), value)
}
