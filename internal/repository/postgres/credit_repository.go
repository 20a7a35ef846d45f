package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreditRepository implements payment.CreditRepository over the credit_entries
// balance table and the append-only credit_history ledger.
type CreditRepository struct {
	pool *pgxpool.Pool
}

func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

func (r *CreditRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *CreditRepository) FindEntryByCustomerID(ctx context.Context, customerID uuid.UUID) (*payment.CreditEntry, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT id, customer_id, total_credit_amount, version
		 FROM credit_entries WHERE customer_id = $1`, customerID,
	)
	entry := &payment.CreditEntry{}
	var amount string
	err := row.Scan(&entry.ID, &entry.CustomerID, &amount, &entry.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan credit entry: %w", err)
	}
	entry.TotalCreditAmount, err = valueobject.NewMoneyFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse credit amount: %w", err)
	}
	return entry, nil
}

// SaveEntry persists the mutated balance guarded by the pre-mutation version.
// Two payment attempts debiting the same customer concurrently serialize here:
// the loser fails with ErrOptimisticLockFailed and the whole transaction rolls
// back for redelivery.
func (r *CreditRepository) SaveEntry(ctx context.Context, entry *payment.CreditEntry) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE credit_entries SET total_credit_amount=$1, version=$2
		 WHERE id=$3 AND version=$4`,
		entry.TotalCreditAmount.String(), entry.Version, entry.ID, entry.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update credit entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit entry %s version %d: %w", entry.ID, entry.Version, domainErrors.ErrOptimisticLockFailed)
	}
	return nil
}

func (r *CreditRepository) FindHistoryByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*payment.CreditHistory, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, customer_id, amount, transaction_type, created_at
		 FROM credit_history WHERE customer_id = $1 ORDER BY created_at ASC`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query credit history: %w", err)
	}
	defer rows.Close()

	var history []*payment.CreditHistory
	for rows.Next() {
		h := &payment.CreditHistory{}
		var amount, txType string
		if err := rows.Scan(&h.ID, &h.CustomerID, &amount, &txType, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit history: %w", err)
		}
		h.Amount, err = valueobject.NewMoneyFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse credit history amount: %w", err)
		}
		h.TransactionType = valueobject.TransactionType(txType)
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *CreditRepository) AppendHistory(ctx context.Context, record *payment.CreditHistory) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO credit_history (id, customer_id, amount, transaction_type, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		record.ID, record.CustomerID, record.Amount.String(), string(record.TransactionType), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit history: %w", err)
	}
	return nil
}
