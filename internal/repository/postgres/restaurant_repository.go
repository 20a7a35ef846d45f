package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodordering/system/internal/domain/restaurant"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RestaurantRepository implements restaurant.Repository using PostgreSQL.
type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// FindByIDWithProducts loads the restaurant with only the requested products.
// Product ids not on the menu are simply absent from the result; the domain
// service turns that absence into a rejection.
func (r *RestaurantRepository) FindByIDWithProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*restaurant.Restaurant, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT id, name, active FROM restaurants WHERE id = $1`, id,
	)
	rest := &restaurant.Restaurant{}
	if err := row.Scan(&rest.ID, &rest.Name, &rest.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan restaurant: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, name, price, quantity, available
		 FROM products WHERE restaurant_id = $1 AND id = ANY($2)`, id, productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &restaurant.Product{}
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.Available); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = valueobject.NewMoneyFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse product price: %w", err)
		}
		rest.Products = append(rest.Products, p)
	}
	return rest, rows.Err()
}

// ApprovalRepository implements restaurant.ApprovalRepository. Save upserts by
// order id so a redelivered approval request converges on one verdict row.
type ApprovalRepository struct {
	pool *pgxpool.Pool
}

func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{pool: pool}
}

func (r *ApprovalRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *ApprovalRepository) Save(ctx context.Context, approval *restaurant.OrderApproval) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO order_approvals (id, order_id, restaurant_id, status, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status`,
		approval.ID, approval.OrderID, approval.RestaurantID, string(approval.Status), approval.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save order approval: %w", err)
	}
	return nil
}
