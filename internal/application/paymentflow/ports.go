package paymentflow

import "context"

// TransactionManager runs a function inside one database transaction. The
// payment save, the gated ledger writes and the response-outbox row all
// commit or roll back together.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
