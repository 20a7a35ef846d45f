package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save upserts the payment by id. A cancel updates the row created by the
// original payment attempt, it never creates a second payment for the order.
func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments (id, order_id, customer_id, price, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
		p.ID, p.OrderID, p.CustomerID, p.Price.String(), string(p.Status), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT id, order_id, customer_id, price, status, created_at
		 FROM payments WHERE order_id = $1`, orderID,
	)
	p := &payment.Payment{}
	var price, status string
	err := row.Scan(&p.ID, &p.OrderID, &p.CustomerID, &price, &status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Price, err = valueobject.NewMoneyFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse payment price: %w", err)
	}
	p.Status = valueobject.PaymentStatus(status)
	return p, nil
}
