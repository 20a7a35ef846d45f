// Package handler exposes the order service's HTTP API.
package handler

import (
	"net/http"

	"github.com/foodordering/system/internal/application/ordersaga"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	createOrder *ordersaga.CreateOrderHandler
	trackOrder  *ordersaga.TrackOrderHandler
}

func NewOrderHandler(createOrder *ordersaga.CreateOrderHandler, trackOrder *ordersaga.TrackOrderHandler) *OrderHandler {
	return &OrderHandler{createOrder: createOrder, trackOrder: trackOrder}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cmd, err := toCreateOrderCommand(req)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.createOrder.Execute(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		TrackingID: result.TrackingID.String(),
		Status:     string(result.Status),
		Message:    "order created successfully",
	})
}

// Track handles GET /api/v1/orders/{trackingID}
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	trackingID, err := uuid.Parse(chi.URLParam(r, "trackingID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid tracking id", Code: "invalid_id"})
		return
	}

	result, err := h.trackOrder.Execute(r.Context(), trackingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrackOrderResponse{
		TrackingID:      result.TrackingID.String(),
		OrderStatus:     string(result.OrderStatus),
		FailureMessages: result.FailureMessages,
	})
}

func toCreateOrderCommand(req CreateOrderRequest) (ordersaga.CreateOrderCommand, error) {
	customerID, _ := uuid.Parse(req.CustomerID)
	restaurantID, _ := uuid.Parse(req.RestaurantID)

	price, err := valueobject.NewMoneyFromString(req.Price)
	if err != nil {
		return ordersaga.CreateOrderCommand{}, domainErrors.NewValidationError("price", "not a valid amount: "+req.Price)
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, item := range req.Items {
		productID, _ := uuid.Parse(item.ProductID)
		itemPrice, err := valueobject.NewMoneyFromString(item.Price)
		if err != nil {
			return ordersaga.CreateOrderCommand{}, domainErrors.NewValidationError("items", "not a valid price: "+item.Price)
		}
		subTotal, err := valueobject.NewMoneyFromString(item.SubTotal)
		if err != nil {
			return ordersaga.CreateOrderCommand{}, domainErrors.NewValidationError("items", "not a valid subtotal: "+item.SubTotal)
		}
		items = append(items, order.Item{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     itemPrice,
			SubTotal:  subTotal,
		})
	}

	return ordersaga.CreateOrderCommand{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Address: order.Address{
			Street:     req.Address.Street,
			PostalCode: req.Address.PostalCode,
			City:       req.Address.City,
		},
		Items: items,
		Price: price,
	}, nil
}
