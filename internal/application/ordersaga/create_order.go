package ordersaga

import (
	"context"
	"fmt"

	"github.com/foodordering/system/internal/domain/customer"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/outbox"
	"github.com/foodordering/system/internal/domain/restaurant"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CreateOrderCommand is the validated input of the create-order operation.
type CreateOrderCommand struct {
	CustomerID   uuid.UUID
	RestaurantID uuid.UUID
	Address      order.Address
	Items        []order.Item
	Price        valueobject.Money
}

// CreateOrderResult is returned to the API layer.
type CreateOrderResult struct {
	TrackingID uuid.UUID
	Status     valueobject.OrderStatus
}

// CreateOrderHandler validates and persists a new order and starts its saga:
// the order save and the initial payment-outbox row share one transaction.
type CreateOrderHandler struct {
	txm           TransactionManager
	orders        order.Repository
	customers     customer.Repository
	restaurants   restaurant.Repository
	orderSvc      order.DomainService
	paymentOutbox *PaymentOutboxHelper
	events        DomainEventPublisher
	log           zerolog.Logger
}

func NewCreateOrderHandler(
	txm TransactionManager,
	orders order.Repository,
	customers customer.Repository,
	restaurants restaurant.Repository,
	paymentOutbox *PaymentOutboxHelper,
	events DomainEventPublisher,
	log zerolog.Logger,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		txm:           txm,
		orders:        orders,
		customers:     customers,
		restaurants:   restaurants,
		paymentOutbox: paymentOutbox,
		events:        events,
		log:           log,
	}
}

// Execute runs the create-order command and returns the public tracking id.
func (h *CreateOrderHandler) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	ctx, span := tracer.Start(ctx, "create-order")
	defer span.End()

	if err := h.checkCustomer(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}
	r, err := h.findRestaurant(ctx, cmd)
	if err != nil {
		return nil, err
	}

	o, err := order.New(cmd.CustomerID, cmd.RestaurantID, cmd.Address, cmd.Items, cmd.Price)
	if err != nil {
		return nil, err
	}
	created, err := h.orderSvc.ValidateAndInitiateOrder(o, r)
	if err != nil {
		return nil, err
	}

	sagaID := uuid.New()
	err = h.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.orders.Save(txCtx, o); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		return h.paymentOutbox.SavePaymentOutboxMessage(txCtx,
			paymentEventPayload(o, messaging.PaymentOrderStatusPending, created.CreatedAt),
			o.Status, saga.StatusStarted, outbox.StatusStarted, sagaID)
	})
	if err != nil {
		return nil, err
	}

	h.publishCreated(ctx, created)
	h.log.Info().
		Str("order_id", o.ID.String()).
		Str("tracking_id", o.TrackingID.String()).
		Str("saga_id", sagaID.String()).
		Msg("order is created")

	return &CreateOrderResult{TrackingID: o.TrackingID, Status: o.Status}, nil
}

func (h *CreateOrderHandler) checkCustomer(ctx context.Context, customerID uuid.UUID) error {
	c, err := h.customers.FindByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("find customer %s: %w", customerID, err)
	}
	if c == nil {
		return fmt.Errorf("customer %s: %w", customerID, domainErrors.ErrCustomerNotFound)
	}
	return nil
}

func (h *CreateOrderHandler) findRestaurant(ctx context.Context, cmd CreateOrderCommand) (*restaurant.Restaurant, error) {
	productIDs := make([]uuid.UUID, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	r, err := h.restaurants.FindByIDWithProducts(ctx, cmd.RestaurantID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", cmd.RestaurantID, err)
	}
	if r == nil {
		return nil, fmt.Errorf("restaurant %s: %w", cmd.RestaurantID, domainErrors.ErrRestaurantNotFound)
	}
	return r, nil
}

func (h *CreateOrderHandler) publishCreated(ctx context.Context, event *order.CreatedEvent) {
	err := h.events.PublishOrderCreated(ctx, messaging.OrderCreated{
		OrderID:    event.Order.ID.String(),
		CustomerID: event.Order.CustomerID.String(),
		Price:      event.Order.Price,
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		h.log.Error().Err(err).Str("order_id", event.Order.ID.String()).
			Msg("could not publish order created event")
	}
}
