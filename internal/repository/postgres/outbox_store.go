package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outbox table names. All three share one schema; each service owns its own.
const (
	PaymentOutboxTable         = "payment_outbox"
	ApprovalOutboxTable        = "restaurant_approval_outbox"
	PaymentResponseOutboxTable = "payment_response_outbox"
)

// OutboxStore implements outbox.Store over one outbox table. A fresh message
// carries version 0 and is inserted with version 1; updates are guarded by
// the loaded version, so two listeners racing on the same row lose with
// ErrOptimisticLockFailed instead of overwriting each other.
type OutboxStore struct {
	pool  *pgxpool.Pool
	table string
}

func NewOutboxStore(pool *pgxpool.Pool, table string) *OutboxStore {
	return &OutboxStore{pool: pool, table: table}
}

func (s *OutboxStore) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, s.pool)
}

func (s *OutboxStore) Save(ctx context.Context, msg *outbox.Message) error {
	if msg.Version == 0 {
		_, err := s.db(ctx).Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, saga_id, created_at, processed_at, type, payload, order_status, saga_status, outbox_status, version)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)`, s.table),
			msg.ID, msg.SagaID, msg.CreatedAt, msg.ProcessedAt, msg.Type, []byte(msg.Payload),
			string(msg.OrderStatus), string(msg.SagaStatus), string(msg.OutboxStatus),
		)
		if err != nil {
			return fmt.Errorf("insert outbox message: %w", err)
		}
		msg.Version = 1
		return nil
	}

	tag, err := s.db(ctx).Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET processed_at=$1, payload=$2, order_status=$3, saga_status=$4, outbox_status=$5, version=version+1
		 WHERE id=$6 AND version=$7`, s.table),
		msg.ProcessedAt, []byte(msg.Payload), string(msg.OrderStatus), string(msg.SagaStatus),
		string(msg.OutboxStatus), msg.ID, msg.Version,
	)
	if err != nil {
		return fmt.Errorf("update outbox message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox message %s version %d: %w", msg.ID, msg.Version, domainErrors.ErrOptimisticLockFailed)
	}
	msg.Version++
	return nil
}

func (s *OutboxStore) FindBySagaIDAndSagaStatus(ctx context.Context, sagaType string, sagaID uuid.UUID, statuses ...saga.Status) (*outbox.Message, error) {
	row := s.db(ctx).QueryRow(ctx, fmt.Sprintf(
		`SELECT id, saga_id, created_at, processed_at, type, payload, order_status, saga_status, outbox_status, version
		 FROM %s WHERE type = $1 AND saga_id = $2 AND saga_status = ANY($3)`, s.table),
		sagaType, sagaID, statusStrings(statuses),
	)
	msg, err := scanOutboxMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

func (s *OutboxStore) FindByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus outbox.Status, statuses ...saga.Status) ([]*outbox.Message, error) {
	rows, err := s.db(ctx).Query(ctx, fmt.Sprintf(
		`SELECT id, saga_id, created_at, processed_at, type, payload, order_status, saga_status, outbox_status, version
		 FROM %s WHERE type = $1 AND outbox_status = $2 AND saga_status = ANY($3)
		 ORDER BY created_at ASC`, s.table),
		sagaType, string(outboxStatus), statusStrings(statuses),
	)
	if err != nil {
		return nil, fmt.Errorf("query outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		msg, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *OutboxStore) DeleteByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus outbox.Status, statuses ...saga.Status) error {
	_, err := s.db(ctx).Exec(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE type = $1 AND outbox_status = $2 AND saga_status = ANY($3)`, s.table),
		sagaType, string(outboxStatus), statusStrings(statuses),
	)
	if err != nil {
		return fmt.Errorf("delete outbox messages: %w", err)
	}
	return nil
}

func scanOutboxMessage(s scanner) (*outbox.Message, error) {
	msg := &outbox.Message{}
	var payload []byte
	var orderStatus, sagaStatus, outboxStatus string
	err := s.Scan(&msg.ID, &msg.SagaID, &msg.CreatedAt, &msg.ProcessedAt, &msg.Type, &payload,
		&orderStatus, &sagaStatus, &outboxStatus, &msg.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan outbox message: %w", err)
	}
	msg.Payload = payload
	msg.OrderStatus = valueobject.OrderStatus(orderStatus)
	msg.SagaStatus = saga.Status(sagaStatus)
	msg.OutboxStatus = outbox.Status(outboxStatus)
	return msg, nil
}

func statusStrings(statuses []saga.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
