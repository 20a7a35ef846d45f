package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// dbOrderItem is the JSONB representation of one order line.
type dbOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	SubTotal  string `json:"sub_total"`
}

// OrderRepository implements order.Repository using PostgreSQL. Items are
// stored as a JSONB column since they are immutable after creation and never
// queried individually.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save inserts a new order (version 0) or updates a transitioned one. The
// update is guarded by the pre-transition version; a stale write fails with
// ErrOptimisticLockFailed.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}
	failures := strings.Join(o.FailureMessages, order.FailureMessageDelimiter)

	if o.Version == 0 {
		_, err := r.db(ctx).Exec(ctx,
			`INSERT INTO orders
			 (id, customer_id, restaurant_id, tracking_id, street, postal_code, city,
			  items, price, status, failure_messages, version, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,0,$12,$13)`,
			o.ID, o.CustomerID, o.RestaurantID, o.TrackingID,
			o.Address.Street, o.Address.PostalCode, o.Address.City,
			items, o.Price.String(), string(o.Status), failures, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	}

	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE orders SET status=$1, failure_messages=$2, version=$3, updated_at=$4
		 WHERE id=$5 AND version=$6`,
		string(o.Status), failures, o.Version, o.UpdatedAt, o.ID, o.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s version %d: %w", o.ID, o.Version, domainErrors.ErrOptimisticLockFailed)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *OrderRepository) FindByTrackingID(ctx context.Context, trackingID uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, `WHERE tracking_id = $1`, trackingID)
}

func (r *OrderRepository) findOne(ctx context.Context, where string, arg any) (*order.Order, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT id, customer_id, restaurant_id, tracking_id, street, postal_code, city,
		        items, price, status, failure_messages, version, created_at, updated_at
		 FROM orders `+where, arg,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func scanOrder(s scanner) (*order.Order, error) {
	o := &order.Order{}
	var items []byte
	var price, status, failures string
	err := s.Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.TrackingID,
		&o.Address.Street, &o.Address.PostalCode, &o.Address.City,
		&items, &price, &status, &failures, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.Price, err = valueobject.NewMoneyFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse order price: %w", err)
	}
	o.Status = valueobject.OrderStatus(status)
	if failures != "" {
		o.FailureMessages = strings.Split(failures, order.FailureMessageDelimiter)
	}
	o.Items, err = unmarshalItems(items)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func marshalItems(items []order.Item) ([]byte, error) {
	dbItems := make([]dbOrderItem, 0, len(items))
	for _, item := range items {
		dbItems = append(dbItems, dbOrderItem{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.String(),
			SubTotal:  item.SubTotal.String(),
		})
	}
	b, err := json.Marshal(dbItems)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}
	return b, nil
}

func unmarshalItems(data []byte) ([]order.Item, error) {
	var dbItems []dbOrderItem
	if err := json.Unmarshal(data, &dbItems); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	items := make([]order.Item, 0, len(dbItems))
	for _, item := range dbItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("parse order item product id: %w", err)
		}
		price, err := valueobject.NewMoneyFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("parse order item price: %w", err)
		}
		subTotal, err := valueobject.NewMoneyFromString(item.SubTotal)
		if err != nil {
			return nil, fmt.Errorf("parse order item subtotal: %w", err)
		}
		items = append(items, order.Item{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     price,
			SubTotal:  subTotal,
		})
	}
	return items, nil
}
