package outbox

import (
	"encoding/json"
	"time"

	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
)

// Status is the publish state of an outbox message. A message stays STARTED
// until the scheduler confirms the broker accepted it, which makes publishing
// at-least-once by construction.
type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
)

// Message is one transactional outbox row. SagaID correlates every row that
// belongs to one saga instance across tables and across services. OrderStatus
// is a denormalized snapshot of the aggregate's status at write time, used for
// read-time filtering only. Version is the optimistic-lock token.
type Message struct {
	ID           uuid.UUID
	SagaID       uuid.UUID
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	Type         string
	Payload      json.RawMessage
	OrderStatus  valueobject.OrderStatus
	SagaStatus   saga.Status
	OutboxStatus Status
	Version      int
}

// NewMessage creates a fresh outbox row for the given saga instance.
func NewMessage(sagaType string, sagaID uuid.UUID, payload json.RawMessage,
	orderStatus valueobject.OrderStatus, sagaStatus saga.Status, outboxStatus Status) *Message {
	return &Message{
		ID:           uuid.New(),
		SagaID:       sagaID,
		CreatedAt:    time.Now(),
		Type:         sagaType,
		Payload:      payload,
		OrderStatus:  orderStatus,
		SagaStatus:   sagaStatus,
		OutboxStatus: outboxStatus,
	}
}

// MarkProcessed stamps the row with the time the current saga step handled it.
func (m *Message) MarkProcessed(orderStatus valueobject.OrderStatus, sagaStatus saga.Status) {
	now := time.Now()
	m.ProcessedAt = &now
	m.OrderStatus = orderStatus
	m.SagaStatus = sagaStatus
}
