package restaurantflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foodordering/system/internal/application/restaurantflow"
	domainErrors "github.com/foodordering/system/internal/domain/errors"
	"github.com/foodordering/system/internal/domain/valueobject"
	"github.com/foodordering/system/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalEnv struct {
	handler     *restaurantflow.ApprovalRequestHandler
	restaurants *testutil.MockRestaurantRepository
	approvals   *testutil.MockApprovalRepository
	responses   *testutil.MockResponsePublisher
}

func setupApprovalEnv() *approvalEnv {
	env := &approvalEnv{
		restaurants: testutil.NewMockRestaurantRepository(),
		approvals:   testutil.NewMockApprovalRepository(),
		responses:   &testutil.MockResponsePublisher{},
	}
	txm := testutil.NewMockTransactionManager()
	env.handler = restaurantflow.NewApprovalRequestHandler(txm, env.restaurants, env.approvals,
		env.responses, testutil.NopLogger())
	return env
}

func TestProcessApproval_Approves(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.restaurants.AddRestaurant(testutil.NewTestRestaurantFor(o))

	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	require.NoError(t, env.handler.ProcessApproval(context.Background(), req))

	approval := env.approvals.ApprovalFor(o.ID)
	require.NotNil(t, approval)
	assert.Equal(t, valueobject.OrderApprovalStatusApproved, approval.Status)

	require.Len(t, env.responses.Responses, 1)
	resp := env.responses.Responses[0]
	assert.Equal(t, req.SagaID, resp.SagaID)
	assert.Equal(t, valueobject.OrderApprovalStatusApproved, resp.OrderApprovalStatus)
	assert.Empty(t, resp.FailureMessages)
}

func TestProcessApproval_RejectsInactiveRestaurant(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	r := testutil.NewTestRestaurantFor(o)
	r.Active = false
	env.restaurants.AddRestaurant(r)

	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	require.NoError(t, env.handler.ProcessApproval(context.Background(), req))

	approval := env.approvals.ApprovalFor(o.ID)
	require.NotNil(t, approval)
	assert.Equal(t, valueobject.OrderApprovalStatusRejected, approval.Status)

	require.Len(t, env.responses.Responses, 1)
	assert.NotEmpty(t, env.responses.Responses[0].FailureMessages)
}

func TestProcessApproval_UnknownRestaurant(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())

	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	err := env.handler.ProcessApproval(context.Background(), req)
	assert.ErrorIs(t, err, domainErrors.ErrRestaurantNotFound)
	assert.Empty(t, env.responses.Responses)
}

func TestProcessApproval_PublishFailurePropagates(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.restaurants.AddRestaurant(testutil.NewTestRestaurantFor(o))
	env.responses.PublishErr = errors.New("broker unreachable")

	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	err := env.handler.ProcessApproval(context.Background(), req)
	require.Error(t, err)

	// the verdict is already saved; redelivery upserts the same row
	assert.NotNil(t, env.approvals.ApprovalFor(o.ID))
}

func TestProcessApproval_RedeliveryConvergesOnSameVerdict(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	env.restaurants.AddRestaurant(testutil.NewTestRestaurantFor(o))

	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	require.NoError(t, env.handler.ProcessApproval(context.Background(), req))
	first := env.approvals.ApprovalFor(o.ID)

	require.NoError(t, env.handler.ProcessApproval(context.Background(), req))
	second := env.approvals.ApprovalFor(o.ID)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Len(t, env.responses.Responses, 2)
}

func TestProcessApproval_InvalidIDs(t *testing.T) {
	env := setupApprovalEnv()
	o := testutil.NewTestOrder(uuid.New(), uuid.New())
	require.NoError(t, o.Pay())
	req := testutil.NewTestApprovalRequestFor(o, uuid.New())
	req.OrderID = "not-a-uuid"

	var validationErr *domainErrors.ValidationError
	err := env.handler.ProcessApproval(context.Background(), req)
	assert.ErrorAs(t, err, &validationErr)
}
