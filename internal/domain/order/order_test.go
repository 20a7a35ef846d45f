package order

import (
	"testing"

	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItems() []Item {
	return []Item{
		{ProductID: uuid.New(), Quantity: 2, Price: valueobject.MustMoney("20.00"), SubTotal: valueobject.MustMoney("40.00")},
		{ProductID: uuid.New(), Quantity: 1, Price: valueobject.MustMoney("10.00"), SubTotal: valueobject.MustMoney("10.00")},
	}
}

func newPendingOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New(uuid.New(), uuid.New(), Address{Street: "1 Main St", PostalCode: "1000AB", City: "Amsterdam"},
		validItems(), valueobject.MustMoney("50.00"))
	require.NoError(t, err)
	return o
}

func TestNew_ValidOrder(t *testing.T) {
	o := newPendingOrder(t)

	assert.Equal(t, valueobject.OrderStatusPending, o.Status)
	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.NotEqual(t, uuid.Nil, o.TrackingID)
	assert.NotEqual(t, o.ID, o.TrackingID)
	assert.Equal(t, 0, o.Version)
}

func TestNew_PriceValidation(t *testing.T) {
	items := validItems()

	tests := []struct {
		name  string
		items []Item
		price valueobject.Money
	}{
		{"no items", nil, valueobject.MustMoney("50.00")},
		{"zero total", items, valueobject.ZeroMoney},
		{"total does not match item subtotals", items, valueobject.MustMoney("60.00")},
		{
			"subtotal does not match price times quantity",
			[]Item{{ProductID: uuid.New(), Quantity: 2, Price: valueobject.MustMoney("20.00"), SubTotal: valueobject.MustMoney("35.00")}},
			valueobject.MustMoney("35.00"),
		},
		{
			"non-positive quantity",
			[]Item{{ProductID: uuid.New(), Quantity: 0, Price: valueobject.MustMoney("20.00"), SubTotal: valueobject.ZeroMoney}},
			valueobject.MustMoney("20.00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(uuid.New(), uuid.New(), Address{}, tt.items, tt.price)
			assert.Error(t, err)
		})
	}
}

func TestOrder_StateMachine(t *testing.T) {
	statuses := []valueobject.OrderStatus{
		valueobject.OrderStatusPending,
		valueobject.OrderStatusPaid,
		valueobject.OrderStatusApproved,
		valueobject.OrderStatusCancelling,
		valueobject.OrderStatusCancelled,
	}
	allowed := map[valueobject.OrderStatus][]valueobject.OrderStatus{
		valueobject.OrderStatusPending:    {valueobject.OrderStatusPaid, valueobject.OrderStatusCancelled},
		valueobject.OrderStatusPaid:       {valueobject.OrderStatusApproved, valueobject.OrderStatusCancelling},
		valueobject.OrderStatusApproved:   {},
		valueobject.OrderStatusCancelling: {valueobject.OrderStatusCancelled},
		valueobject.OrderStatusCancelled:  {},
	}

	// every pair is either explicitly allowed or rejected
	for _, from := range statuses {
		for _, to := range statuses {
			o := newPendingOrder(t)
			o.Status = from

			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, o.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrder_HappyPathTransitions(t *testing.T) {
	o := newPendingOrder(t)

	require.NoError(t, o.Pay())
	assert.Equal(t, valueobject.OrderStatusPaid, o.Status)
	assert.Equal(t, 1, o.Version)

	require.NoError(t, o.Approve())
	assert.Equal(t, valueobject.OrderStatusApproved, o.Status)
	assert.Equal(t, 2, o.Version)
}

func TestOrder_CompensationPath(t *testing.T) {
	o := newPendingOrder(t)
	require.NoError(t, o.Pay())

	require.NoError(t, o.InitCancel([]string{"restaurant rejected the order"}))
	assert.Equal(t, valueobject.OrderStatusCancelling, o.Status)

	require.NoError(t, o.Cancel([]string{"payment refunded"}))
	assert.Equal(t, valueobject.OrderStatusCancelled, o.Status)
	assert.Equal(t, []string{"restaurant rejected the order", "payment refunded"}, o.FailureMessages)
	assert.Equal(t, 3, o.Version)
}

func TestOrder_CancelFromPending(t *testing.T) {
	o := newPendingOrder(t)

	require.NoError(t, o.Cancel([]string{"not enough credit"}))
	assert.Equal(t, valueobject.OrderStatusCancelled, o.Status)
}

func TestOrder_InvalidTransition(t *testing.T) {
	o := newPendingOrder(t)

	err := o.Approve()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStateTransition)
	assert.Equal(t, valueobject.OrderStatusPending, o.Status)
	assert.Equal(t, 0, o.Version)
}

func TestOrder_EmptyFailureMessagesDropped(t *testing.T) {
	o := newPendingOrder(t)
	require.NoError(t, o.Cancel([]string{"", "real failure", ""}))
	assert.Equal(t, []string{"real failure"}, o.FailureMessages)
}
