package testutil

import (
	"time"

	"github.com/foodordering/system/internal/domain/customer"
	"github.com/foodordering/system/internal/domain/order"
	"github.com/foodordering/system/internal/domain/payment"
	"github.com/foodordering/system/internal/domain/restaurant"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/messaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NopLogger returns a logger that discards everything.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// NewTestCustomer creates a customer replica row.
func NewTestCustomer() *customer.Customer {
	return &customer.Customer{
		ID:        uuid.New(),
		Username:  "jdoe",
		FirstName: "John",
		LastName:  "Doe",
	}
}

// NewTestOrder creates a consistent PENDING order worth 50.00: two items of
// product A at 20.00 and one of product B at 10.00.
func NewTestOrder(customerID, restaurantID uuid.UUID) *order.Order {
	o, err := order.New(customerID, restaurantID,
		order.Address{Street: "1 Main St", PostalCode: "1000AB", City: "Amsterdam"},
		[]order.Item{
			{ProductID: uuid.New(), Quantity: 2, Price: valueobject.MustMoney("20.00"), SubTotal: valueobject.MustMoney("40.00")},
			{ProductID: uuid.New(), Quantity: 1, Price: valueobject.MustMoney("10.00"), SubTotal: valueobject.MustMoney("10.00")},
		},
		valueobject.MustMoney("50.00"))
	if err != nil {
		panic(err)
	}
	return o
}

// NewTestRestaurantFor creates an active restaurant whose menu matches the
// order's items exactly, so domain validation passes.
func NewTestRestaurantFor(o *order.Order) *restaurant.Restaurant {
	r := &restaurant.Restaurant{
		ID:     o.RestaurantID,
		Name:   "Trattoria Milano",
		Active: true,
	}
	for _, item := range o.Items {
		r.Products = append(r.Products, &restaurant.Product{
			ID:        item.ProductID,
			Name:      "Dish",
			Price:     item.Price,
			Quantity:  item.Quantity * 10,
			Available: true,
		})
	}
	return r
}

// SeedCredit gives the customer an opening balance with the matching CREDIT
// ledger record, so the double-entry invariant holds from the start.
func SeedCredit(repo *MockCreditRepository, customerID uuid.UUID, amount valueobject.Money) *payment.CreditEntry {
	entry := &payment.CreditEntry{
		ID:                uuid.New(),
		CustomerID:        customerID,
		TotalCreditAmount: amount,
		Version:           1,
	}
	repo.AddEntry(entry)
	repo.AddHistory(payment.NewCreditHistory(customerID, amount, valueobject.TransactionTypeCredit))
	return entry
}

// NewTestPaymentRequest creates a wire payment request for the given intent.
func NewTestPaymentRequest(orderID, customerID, sagaID uuid.UUID, status messaging.PaymentOrderStatus) messaging.PaymentRequest {
	return messaging.PaymentRequest{
		ID:                 uuid.NewString(),
		SagaID:             sagaID.String(),
		OrderID:            orderID.String(),
		CustomerID:         customerID.String(),
		Price:              valueobject.MustMoney("50.00"),
		CreatedAt:          time.Now(),
		PaymentOrderStatus: status,
	}
}

// NewTestApprovalRequestFor creates a wire approval request matching the order.
func NewTestApprovalRequestFor(o *order.Order, sagaID uuid.UUID) messaging.RestaurantApprovalRequest {
	products := make([]messaging.ApprovalRequestProduct, 0, len(o.Items))
	for _, item := range o.Items {
		products = append(products, messaging.ApprovalRequestProduct{
			ID:       item.ProductID.String(),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return messaging.RestaurantApprovalRequest{
		ID:                    uuid.NewString(),
		SagaID:                sagaID.String(),
		OrderID:               o.ID.String(),
		RestaurantID:          o.RestaurantID.String(),
		Products:              products,
		Price:                 o.Price,
		CreatedAt:             time.Now(),
		RestaurantOrderStatus: messaging.RestaurantOrderStatusPaid,
	}
}

// NewTestPaymentResponse creates a wire payment response for the saga step.
func NewTestPaymentResponse(orderID, sagaID uuid.UUID, status valueobject.PaymentStatus, failures []string) messaging.PaymentResponse {
	return messaging.PaymentResponse{
		ID:              uuid.NewString(),
		SagaID:          sagaID.String(),
		OrderID:         orderID.String(),
		PaymentID:       uuid.NewString(),
		CustomerID:      uuid.NewString(),
		Price:           valueobject.MustMoney("50.00"),
		CreatedAt:       time.Now(),
		PaymentStatus:   status,
		FailureMessages: failures,
	}
}

// NewTestApprovalResponse creates a wire approval response for the saga step.
func NewTestApprovalResponse(orderID, sagaID uuid.UUID, status valueobject.OrderApprovalStatus, failures []string) messaging.RestaurantApprovalResponse {
	return messaging.RestaurantApprovalResponse{
		ID:                  uuid.NewString(),
		SagaID:              sagaID.String(),
		OrderID:             orderID.String(),
		RestaurantID:        uuid.NewString(),
		CreatedAt:           time.Now(),
		OrderApprovalStatus: status,
		FailureMessages:     failures,
	}
}
