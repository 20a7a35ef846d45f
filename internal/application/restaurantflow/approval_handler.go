// Package restaurantflow is the restaurant service's application layer. It
// evaluates approval requests for paid orders against the restaurant's menu
// and replies with an approval or a rejection. Responses are published
// directly: the verdict is recomputed deterministically on redelivery, so the
// restaurant side carries no outbox.
package restaurantflow

import (
	"context"
	"fmt"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/restaurant"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/foodordering/system/internal/application/restaurantflow")

// TransactionManager scopes the approval save to one database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ResponsePublisher sends approval responses back to the order service.
type ResponsePublisher interface {
	PublishApprovalResponse(ctx context.Context, resp messaging.RestaurantApprovalResponse) error
}

// ApprovalRequestHandler processes restaurant approval requests end to end:
// load the restaurant with the ordered products, run the approval rules,
// persist the verdict, publish the response.
type ApprovalRequestHandler struct {
	txm           TransactionManager
	restaurants   restaurant.Repository
	approvals     restaurant.ApprovalRepository
	restaurantSvc restaurant.DomainService
	responses     ResponsePublisher
	log           zerolog.Logger
}

func NewApprovalRequestHandler(
	txm TransactionManager,
	restaurants restaurant.Repository,
	approvals restaurant.ApprovalRepository,
	responses ResponsePublisher,
	log zerolog.Logger,
) *ApprovalRequestHandler {
	return &ApprovalRequestHandler{
		txm:         txm,
		restaurants: restaurants,
		approvals:   approvals,
		responses:   responses,
		log:         log,
	}
}

// ProcessApproval handles one approval request. A publish failure after the
// approval was saved propagates so the broker redelivers; the save is an
// upsert keyed by order id, so the retry converges on the same verdict.
func (h *ApprovalRequestHandler) ProcessApproval(ctx context.Context, req messaging.RestaurantApprovalRequest) error {
	ctx, span := tracer.Start(ctx, "process-approval")
	defer span.End()

	detail, restaurantID, err := toOrderDetail(req)
	if err != nil {
		return err
	}

	r, err := h.restaurants.FindByIDWithProducts(ctx, restaurantID, productIDs(detail))
	if err != nil {
		return fmt.Errorf("find restaurant %s: %w", req.RestaurantID, err)
	}
	if r == nil {
		h.log.Error().Str("restaurant_id", req.RestaurantID).Msg("restaurant could not be found")
		return fmt.Errorf("restaurant %s: %w", req.RestaurantID, domainErrors.ErrRestaurantNotFound)
	}

	event := h.restaurantSvc.ValidateOrder(r, detail)
	err = h.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		return h.approvals.Save(txCtx, event.Approval)
	})
	if err != nil {
		return fmt.Errorf("save order approval for order %s: %w", req.OrderID, err)
	}

	resp := messaging.RestaurantApprovalResponse{
		ID:                  uuid.NewString(),
		SagaID:              req.SagaID,
		OrderID:             req.OrderID,
		RestaurantID:        req.RestaurantID,
		CreatedAt:           event.CreatedAt,
		OrderApprovalStatus: event.Approval.Status,
		FailureMessages:     event.FailureMessages,
	}
	if err := h.responses.PublishApprovalResponse(ctx, resp); err != nil {
		return fmt.Errorf("publish approval response for order %s: %w", req.OrderID, err)
	}

	h.log.Info().
		Str("order_id", req.OrderID).
		Str("approval_status", string(event.Approval.Status)).
		Msg("order approval processed")
	return nil
}

func toOrderDetail(req messaging.RestaurantApprovalRequest) (restaurant.OrderDetail, uuid.UUID, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return restaurant.OrderDetail{}, uuid.Nil, domainErrors.NewValidationError("order_id", "not a valid uuid: "+req.OrderID)
	}
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return restaurant.OrderDetail{}, uuid.Nil, domainErrors.NewValidationError("restaurant_id", "not a valid uuid: "+req.RestaurantID)
	}

	products := make([]restaurant.OrderedProduct, 0, len(req.Products))
	for _, p := range req.Products {
		productID, err := uuid.Parse(p.ID)
		if err != nil {
			return restaurant.OrderDetail{}, uuid.Nil, domainErrors.NewValidationError("product_id", "not a valid uuid: "+p.ID)
		}
		products = append(products, restaurant.OrderedProduct{
			ProductID: productID,
			Quantity:  p.Quantity,
			Price:     p.Price,
		})
	}

	return restaurant.OrderDetail{
		OrderID:     orderID,
		Products:    products,
		TotalAmount: req.Price,
		OrderStatus: valueobject.OrderStatus(req.RestaurantOrderStatus),
	}, restaurantID, nil
}

func productIDs(detail restaurant.OrderDetail) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(detail.Products))
	for _, p := range detail.Products {
		ids = append(ids, p.ProductID)
	}
	return ids
}
