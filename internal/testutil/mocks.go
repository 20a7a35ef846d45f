// Package testutil provides in-memory repository mocks and fixtures shared by
// the application and handler tests. The mocks store deep copies and support
// snapshot/restore, so MockTransactionManager can emulate real rollback
// semantics across several repositories.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/foodordering/system/internal/domain/customer"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/restaurant"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
)

// Transactional is implemented by mocks that participate in a mock
// transaction.
type Transactional interface {
	Snapshot() any
	Restore(snapshot any)
}

// --- Transaction Manager Mock ---

// MockTransactionManager snapshots its participants before running fn and
// restores them when fn fails, mirroring a database rollback.
type MockTransactionManager struct {
	Participants        []Transactional
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager(participants ...Transactional) *MockTransactionManager {
	return &MockTransactionManager{Participants: participants}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	snapshots := make([]any, len(m.Participants))
	for i, p := range m.Participants {
		snapshots[i] = p.Snapshot()
	}
	if err := fn(ctx); err != nil {
		for i, p := range m.Participants {
			p.Restore(snapshots[i])
		}
		return err
	}
	return nil
}

// --- Order Repository Mock ---

type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order

	SaveFunc func(ctx context.Context, o *order.Order) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[uuid.UUID]*order.Order)}
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	cp.FailureMessages = append([]string(nil), o.FailureMessages...)
	return &cp
}

func (m *MockOrderRepository) AddOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = copyOrder(o)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.orders[o.ID]; ok && o.Version > 0 && existing.Version != o.Version-1 {
		return domainErrors.ErrOptimisticLockFailed
	}
	m.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (m *MockOrderRepository) FindByTrackingID(ctx context.Context, trackingID uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TrackingID == trackingID {
			return copyOrder(o), nil
		}
	}
	return nil, nil
}

// Orders returns every stored order (test helper).
func (m *MockOrderRepository) Orders() []*order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		result = append(result, copyOrder(o))
	}
	return result
}

// GetOrder returns the stored order (test helper, no context needed).
func (m *MockOrderRepository) GetOrder(id uuid.UUID) *order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	return copyOrder(o)
}

func (m *MockOrderRepository) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]*order.Order, len(m.orders))
	for id, o := range m.orders {
		snap[id] = copyOrder(o)
	}
	return snap
}

func (m *MockOrderRepository) Restore(snapshot any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = snapshot.(map[uuid.UUID]*order.Order)
}

// --- Outbox Store Mock ---

type MockOutboxStore struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*outbox.Message

	SaveFunc func(ctx context.Context, msg *outbox.Message) error
}

func NewMockOutboxStore() *MockOutboxStore {
	return &MockOutboxStore{messages: make(map[uuid.UUID]*outbox.Message)}
}

func copyMessage(msg *outbox.Message) *outbox.Message {
	cp := *msg
	cp.Payload = append([]byte(nil), msg.Payload...)
	if msg.ProcessedAt != nil {
		t := *msg.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}

func (m *MockOutboxStore) AddMessage(msg *outbox.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := copyMessage(msg)
	if cp.Version == 0 {
		cp.Version = 1
	}
	m.messages[cp.ID] = cp
}

func (m *MockOutboxStore) Save(ctx context.Context, msg *outbox.Message) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.messages[msg.ID]
	if msg.Version == 0 {
		if ok {
			return domainErrors.ErrOptimisticLockFailed
		}
		msg.Version = 1
		m.messages[msg.ID] = copyMessage(msg)
		return nil
	}
	if !ok || existing.Version != msg.Version {
		return domainErrors.ErrOptimisticLockFailed
	}
	msg.Version++
	m.messages[msg.ID] = copyMessage(msg)
	return nil
}

func (m *MockOutboxStore) FindBySagaIDAndSagaStatus(ctx context.Context, sagaType string, sagaID uuid.UUID, statuses ...saga.Status) (*outbox.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.Type == sagaType && msg.SagaID == sagaID && statusIn(msg.SagaStatus, statuses) {
			return copyMessage(msg), nil
		}
	}
	return nil, nil
}

func (m *MockOutboxStore) FindByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus outbox.Status, statuses ...saga.Status) ([]*outbox.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*outbox.Message
	for _, msg := range m.messages {
		if msg.Type == sagaType && msg.OutboxStatus == outboxStatus && statusIn(msg.SagaStatus, statuses) {
			result = append(result, copyMessage(msg))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *MockOutboxStore) DeleteByOutboxStatusAndSagaStatus(ctx context.Context, sagaType string, outboxStatus outbox.Status, statuses ...saga.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, msg := range m.messages {
		if msg.Type == sagaType && msg.OutboxStatus == outboxStatus && statusIn(msg.SagaStatus, statuses) {
			delete(m.messages, id)
		}
	}
	return nil
}

// Messages returns every stored message (test helper).
func (m *MockOutboxStore) Messages() []*outbox.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*outbox.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		result = append(result, copyMessage(msg))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (m *MockOutboxStore) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]*outbox.Message, len(m.messages))
	for id, msg := range m.messages {
		snap[id] = copyMessage(msg)
	}
	return snap
}

func (m *MockOutboxStore) Restore(snapshot any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = snapshot.(map[uuid.UUID]*outbox.Message)
}

func statusIn(status saga.Status, statuses []saga.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// --- Payment Repository Mock ---

type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.Payment

	SaveFunc func(ctx context.Context, p *payment.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[uuid.UUID]*payment.Payment)}
}

func (m *MockPaymentRepository) AddPayment(p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.ID] = &cp
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetPayment returns the stored payment (test helper).
func (m *MockPaymentRepository) GetPayment(id uuid.UUID) *payment.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (m *MockPaymentRepository) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]*payment.Payment, len(m.payments))
	for id, p := range m.payments {
		cp := *p
		snap[id] = &cp
	}
	return snap
}

func (m *MockPaymentRepository) Restore(snapshot any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = snapshot.(map[uuid.UUID]*payment.Payment)
}

// --- Credit Repository Mock ---

type MockCreditRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*payment.CreditEntry
	history map[uuid.UUID][]*payment.CreditHistory

	SaveEntryFunc func(ctx context.Context, entry *payment.CreditEntry) error
}

func NewMockCreditRepository() *MockCreditRepository {
	return &MockCreditRepository{
		entries: make(map[uuid.UUID]*payment.CreditEntry),
		history: make(map[uuid.UUID][]*payment.CreditHistory),
	}
}

func (m *MockCreditRepository) AddEntry(entry *payment.CreditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.CustomerID] = &cp
}

func (m *MockCreditRepository) AddHistory(record *payment.CreditHistory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.history[record.CustomerID] = append(m.history[record.CustomerID], &cp)
}

func (m *MockCreditRepository) FindEntryByCustomerID(ctx context.Context, customerID uuid.UUID) (*payment.CreditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[customerID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (m *MockCreditRepository) SaveEntry(ctx context.Context, entry *payment.CreditEntry) error {
	if m.SaveEntryFunc != nil {
		return m.SaveEntryFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[entry.CustomerID]; ok && existing.Version != entry.Version-1 {
		return domainErrors.ErrOptimisticLockFailed
	}
	cp := *entry
	m.entries[entry.CustomerID] = &cp
	return nil
}

func (m *MockCreditRepository) FindHistoryByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*payment.CreditHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.history[customerID]
	result := make([]*payment.CreditHistory, 0, len(records))
	for _, r := range records {
		cp := *r
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockCreditRepository) AppendHistory(ctx context.Context, record *payment.CreditHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.history[record.CustomerID] = append(m.history[record.CustomerID], &cp)
	return nil
}

// GetEntry returns the stored credit entry (test helper).
func (m *MockCreditRepository) GetEntry(customerID uuid.UUID) *payment.CreditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[customerID]
	if !ok {
		return nil
	}
	cp := *entry
	return &cp
}

// HistoryFor returns the stored ledger records (test helper).
func (m *MockCreditRepository) HistoryFor(customerID uuid.UUID) []*payment.CreditHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.history[customerID]
	result := make([]*payment.CreditHistory, 0, len(records))
	for _, r := range records {
		cp := *r
		result = append(result, &cp)
	}
	return result
}

type creditSnapshot struct {
	entries map[uuid.UUID]*payment.CreditEntry
	history map[uuid.UUID][]*payment.CreditHistory
}

func (m *MockCreditRepository) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := creditSnapshot{
		entries: make(map[uuid.UUID]*payment.CreditEntry, len(m.entries)),
		history: make(map[uuid.UUID][]*payment.CreditHistory, len(m.history)),
	}
	for id, e := range m.entries {
		cp := *e
		snap.entries[id] = &cp
	}
	for id, records := range m.history {
		cps := make([]*payment.CreditHistory, 0, len(records))
		for _, r := range records {
			cp := *r
			cps = append(cps, &cp)
		}
		snap.history[id] = cps
	}
	return snap
}

func (m *MockCreditRepository) Restore(snapshot any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := snapshot.(creditSnapshot)
	m.entries = snap.entries
	m.history = snap.history
}

// --- Customer Repository Mock ---

type MockCustomerRepository struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*customer.Customer
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[uuid.UUID]*customer.Customer)}
}

func (m *MockCustomerRepository) AddCustomer(c *customer.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// --- Restaurant Repository Mocks ---

type MockRestaurantRepository struct {
	mu          sync.Mutex
	restaurants map[uuid.UUID]*restaurant.Restaurant
}

func NewMockRestaurantRepository() *MockRestaurantRepository {
	return &MockRestaurantRepository{restaurants: make(map[uuid.UUID]*restaurant.Restaurant)}
}

func (m *MockRestaurantRepository) AddRestaurant(r *restaurant.Restaurant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[r.ID] = r
}

func (m *MockRestaurantRepository) FindByIDWithProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*restaurant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, nil
	}
	requested := make(map[uuid.UUID]bool, len(productIDs))
	for _, pid := range productIDs {
		requested[pid] = true
	}
	cp := &restaurant.Restaurant{ID: r.ID, Name: r.Name, Active: r.Active}
	for _, p := range r.Products {
		if requested[p.ID] {
			pcp := *p
			cp.Products = append(cp.Products, &pcp)
		}
	}
	return cp, nil
}

type MockApprovalRepository struct {
	mu        sync.Mutex
	approvals map[uuid.UUID]*restaurant.OrderApproval

	SaveFunc func(ctx context.Context, approval *restaurant.OrderApproval) error
}

func NewMockApprovalRepository() *MockApprovalRepository {
	return &MockApprovalRepository{approvals: make(map[uuid.UUID]*restaurant.OrderApproval)}
}

func (m *MockApprovalRepository) Save(ctx context.Context, approval *restaurant.OrderApproval) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, approval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *approval
	m.approvals[approval.OrderID] = &cp
	return nil
}

// ApprovalFor returns the stored approval for the order (test helper).
func (m *MockApprovalRepository) ApprovalFor(orderID uuid.UUID) *restaurant.OrderApproval {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[orderID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// --- Publisher Mocks ---

// MockEventPublisher records the order service's published domain events.
type MockEventPublisher struct {
	mu        sync.Mutex
	Created   []messaging.OrderCreated
	Paid      []messaging.OrderPaid
	Cancelled []messaging.OrderCancelled

	PublishErr error
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, event messaging.OrderCreated) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Created = append(m.Created, event)
	return nil
}

func (m *MockEventPublisher) PublishOrderPaid(ctx context.Context, event messaging.OrderPaid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Paid = append(m.Paid, event)
	return nil
}

func (m *MockEventPublisher) PublishOrderCancelled(ctx context.Context, event messaging.OrderCancelled) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Cancelled = append(m.Cancelled, event)
	return nil
}

// MockResponsePublisher records the restaurant service's approval responses.
type MockResponsePublisher struct {
	mu        sync.Mutex
	Responses []messaging.RestaurantApprovalResponse

	PublishErr error
}

func (m *MockResponsePublisher) PublishApprovalResponse(ctx context.Context, resp messaging.RestaurantApprovalResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Responses = append(m.Responses, resp)
	return nil
}

// MockProducer records raw broker messages.
type MockProducer struct {
	mu       sync.Mutex
	Messages []ProducedMessage

	ProduceErr error
}

type ProducedMessage struct {
	Topic string
	Key   string
	Value []byte
}

func (m *MockProducer) Produce(ctx context.Context, topic string, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProduceErr != nil {
		return m.ProduceErr
	}
	m.Messages = append(m.Messages, ProducedMessage{Topic: topic, Key: string(key), Value: append([]byte(nil), value...)})
	return nil
}
