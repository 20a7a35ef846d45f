package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodordering/system/internal/domain/customer"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRepository implements customer.Repository. The order service keeps a
// local replica of customers, fed by customer-created events, so order
// creation validates the customer without a cross-service call.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO customers (id, username, first_name, last_name)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username,
		   first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name`,
		c.ID, c.Username, c.FirstName, c.LastName,
	)
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT id, username, first_name, last_name FROM customers WHERE id = $1`, id,
	)
	c := &customer.Customer{}
	if err := row.Scan(&c.ID, &c.Username, &c.FirstName, &c.LastName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
