// Package saga defines the generic contract for a saga step: a forward
// transition driven by an external response and a symmetric compensating
// transition. Concrete steps coordinate "load aggregate, apply domain
// transition, persist, write the next outbox message" inside one local
// transaction; this package only fixes the shape.
package saga

import "context"

// Status is the coarse lifecycle marker of a saga instance, distinct from the
// owning aggregate's own status. It gates idempotent step execution: a step
// that cannot find an outbox row in its expected status treats the inbound
// message as a duplicate.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusProcessing   Status = "PROCESSING"
	StatusSucceeded    Status = "SUCCEEDED"
	StatusCompensating Status = "COMPENSATING"
	StatusCompensated  Status = "COMPENSATED"
	StatusFailed       Status = "FAILED"
)

// OrderSagaName identifies the order-processing saga in shared outbox tables.
const OrderSagaName = "OrderProcessingSaga"

// Step is one cross-service interaction of a saga, parameterized by the
// external-response payload that drives it.
type Step[T any] interface {
	// Process executes the forward transition for the response.
	Process(ctx context.Context, data T) error
	// Rollback executes the compensating transition for the response.
	Rollback(ctx context.Context, data T) error
}
