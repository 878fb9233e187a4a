package commands_test

import (
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAggregate(t *testing.T) *order.Order {
	t.Helper()

	item, err := order.NewItem("SKU-1", "Widget", 2, decimal.NewFromInt(50), false, false)
	require.NoError(t, err)

	totals, err := order.NewTotals(
		decimal.NewFromInt(100),
		decimal.NewFromInt(10),
		decimal.NewFromInt(5),
		decimal.Zero,
		decimal.NewFromInt(115),
	)
	require.NoError(t, err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		"jane@example.com",
		"Jane Doe",
		nil,
		[]order.Item{item},
		totals,
		order.ShippingStandard,
		order.NewPriority(36.5, 3, []string{order.TagHighValue}, true, false),
		"api",
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	return aggregate
}

func TestUpdateOrderStatusCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Processing, "ops", "picked up")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Processing, aggregate.Status())
	require.Len(t, aggregate.StatusHistory(), 2)
	assert.Equal(t, "ops", aggregate.StatusHistory()[1].Actor())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_RecomputesWithAge(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Processing, "ops", "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	// A month pending at the fixed clock hits the age cap:
	// 11.5 (total) + 25 (high value) + 20 (age cap) = 56.5
	assert.InDelta(t, 56.5, aggregate.Priority().Score(), 1e-9)
	assert.Equal(t, 3, aggregate.Priority().Level())
}

func TestUpdateOrderStatusCommandHandler_Handle_InvalidTransition(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Delivered, "ops", "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Equal(t, order.Pending, aggregate.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusCommandHandler_Handle_CancellationDeprioritizes(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Cancelled, "ops", "customer request")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, aggregate.Status())
	assert.Equal(t, float64(0), aggregate.Priority().Score())
	assert.Equal(t, order.MaxLevel, aggregate.Priority().Level())
}

func TestUpdateOrderStatusCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewUpdateOrderStatusCommand(id, order.Processing, "ops", "")
	require.NoError(t, err)

	notFound := errs.NewObjectNotFoundError("orderID", id.String())

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, id).Return(nil, notFound)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestUpdateOrderStatusCommandHandler_Handle_RetriesVersionConflict(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Processing, "ops", "")
	require.NoError(t, err)

	conflict := errs.NewVersionIsInvalidErrorWithCause("order")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	// First read loses the conditional write; the replay re-reads fresh
	// state and succeeds.
	repo.On("Get", mock.Anything, aggregate.ID()).Return(testAggregate(t), nil).Once()
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(conflict).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestUpdateOrderStatusCommandHandler_Handle_SurfacesConflictAfterRetries(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewUpdateOrderStatusCommand(testAggregate(t).ID(), order.Processing, "ops", "")
	require.NoError(t, err)

	conflict := errs.NewVersionIsInvalidErrorWithCause("order")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, mock.Anything).Return(testAggregate(t), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(conflict)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	repo.AssertNumberOfCalls(t, "Update", 3)
}

func TestUpdateOrderStatusCommandHandler_Handle_RetriesTransientPersistenceFailure(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Processing, "ops", "")
	require.NoError(t, err)

	fault := errs.NewPersistenceFailedError("update order", errors.New("connection reset by peer"))

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	// The first write hits a transient storage fault; the replay re-reads
	// and lands.
	repo.On("Get", mock.Anything, aggregate.ID()).Return(testAggregate(t), nil).Once()
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(fault).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestUpdateOrderStatusCommandHandler_Handle_SurfacesPersistenceFailureAfterRetries(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewUpdateOrderStatusCommand(testAggregate(t).ID(), order.Processing, "ops", "")
	require.NoError(t, err)

	fault := errs.NewPersistenceFailedError("update order", errors.New("connection reset by peer"))

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, mock.Anything).Return(testAggregate(t), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(fault)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPersistenceFailed)
	repo.AssertNumberOfCalls(t, "Update", 3)
}
