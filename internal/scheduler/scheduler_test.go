package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/scheduler"
	"github.com/foodordering/system/internal/testutil"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []*outbox.Message
	failFor   map[uuid.UUID]error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *outbox.Message) error {
	if err, ok := p.failFor[msg.ID]; ok {
		return err
	}
	p.published = append(p.published, msg)
	return nil
}

func seedMessage(store *testutil.MockOutboxStore, sagaStatus saga.Status, outboxStatus outbox.Status) *outbox.Message {
	msg := outbox.NewMessage(saga.OrderSagaName, uuid.New(), []byte(`{}`),
		valueobject.OrderStatusPending, sagaStatus, outboxStatus)
	store.AddMessage(msg)
	return msg
}

func TestScheduler_Poll_PublishesAndMarksCompleted(t *testing.T) {
	store := testutil.NewMockOutboxStore()
	msg := seedMessage(store, saga.StatusStarted, outbox.StatusStarted)
	pub := &recordingPublisher{}

	s := scheduler.New("payment-outbox", scheduler.NewStoreSource(store, saga.OrderSagaName, saga.StatusStarted),
		pub, time.Second, testutil.NopLogger())
	require.NoError(t, s.Poll(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, msg.ID, pub.published[0].ID)

	stored := store.Messages()
	require.Len(t, stored, 1)
	assert.Equal(t, outbox.StatusCompleted, stored[0].OutboxStatus)
}

func TestScheduler_Poll_SkipsOtherSagaStatuses(t *testing.T) {
	store := testutil.NewMockOutboxStore()
	seedMessage(store, saga.StatusProcessing, outbox.StatusStarted)
	pub := &recordingPublisher{}

	s := scheduler.New("payment-outbox", scheduler.NewStoreSource(store, saga.OrderSagaName, saga.StatusStarted),
		pub, time.Second, testutil.NopLogger())
	require.NoError(t, s.Poll(context.Background()))

	assert.Empty(t, pub.published)
	assert.Equal(t, outbox.StatusStarted, store.Messages()[0].OutboxStatus)
}

func TestScheduler_Poll_PublishFailureLeavesRowForNextTick(t *testing.T) {
	store := testutil.NewMockOutboxStore()
	failing := seedMessage(store, saga.StatusStarted, outbox.StatusStarted)
	ok := seedMessage(store, saga.StatusStarted, outbox.StatusStarted)
	pub := &recordingPublisher{failFor: map[uuid.UUID]error{failing.ID: errors.New("broker unreachable")}}

	s := scheduler.New("payment-outbox", scheduler.NewStoreSource(store, saga.OrderSagaName, saga.StatusStarted),
		pub, time.Second, testutil.NopLogger())
	require.NoError(t, s.Poll(context.Background()))

	// the healthy row was published and marked, the failed one stays STARTED
	require.Len(t, pub.published, 1)
	assert.Equal(t, ok.ID, pub.published[0].ID)
	for _, msg := range store.Messages() {
		if msg.ID == failing.ID {
			assert.Equal(t, outbox.StatusStarted, msg.OutboxStatus)
		} else {
			assert.Equal(t, outbox.StatusCompleted, msg.OutboxStatus)
		}
	}

	// next tick retries the failed row
	pub.failFor = nil
	require.NoError(t, s.Poll(context.Background()))
	assert.Len(t, pub.published, 2)
}

func TestScheduler_Run_StopsOnContextCancel(t *testing.T) {
	store := testutil.NewMockOutboxStore()
	pub := &recordingPublisher{}
	s := scheduler.New("payment-outbox", scheduler.NewStoreSource(store, saga.OrderSagaName, saga.StatusStarted),
		pub, time.Millisecond, testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestCleaner_RemovesOnlyCompletedTerminalRows(t *testing.T) {
	store := testutil.NewMockOutboxStore()
	finishedPublished := seedMessage(store, saga.StatusSucceeded, outbox.StatusCompleted)
	finishedUnpublished := seedMessage(store, saga.StatusCompensated, outbox.StatusStarted)
	liveSaga := seedMessage(store, saga.StatusProcessing, outbox.StatusCompleted)

	c := scheduler.NewCleaner("payment-outbox-cleaner", store, saga.OrderSagaName, time.Hour, testutil.NopLogger())
	require.NoError(t, c.Clean(context.Background()))

	remaining := map[uuid.UUID]bool{}
	for _, msg := range store.Messages() {
		remaining[msg.ID] = true
	}
	assert.False(t, remaining[finishedPublished.ID])
	assert.True(t, remaining[finishedUnpublished.ID])
	assert.True(t, remaining[liveSaga.ID])
}
