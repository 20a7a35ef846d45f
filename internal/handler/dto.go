package handler

// CreateOrderRequest is the POST /orders body. Money amounts travel as
// decimal strings end to end, never as floats.
type CreateOrderRequest struct {
	CustomerID   string             `json:"customer_id" validate:"required,uuid"`
	RestaurantID string             `json:"restaurant_id" validate:"required,uuid"`
	Address      OrderAddress       `json:"address" validate:"required"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Price        string             `json:"price" validate:"required"`
}

type OrderAddress struct {
	Street     string `json:"street" validate:"required,max=120"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	City       string `json:"city" validate:"required,max=60"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Price     string `json:"price" validate:"required"`
	SubTotal  string `json:"sub_total" validate:"required"`
}

type CreateOrderResponse struct {
	TrackingID string `json:"tracking_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type TrackOrderResponse struct {
	TrackingID      string   `json:"tracking_id"`
	OrderStatus     string   `json:"order_status"`
	FailureMessages []string `json:"failure_messages,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
