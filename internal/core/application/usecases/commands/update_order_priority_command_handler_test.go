package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateOrderPriorityCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderPriorityCommand(aggregate.ID(), 1, true, "manager")
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

	h := commands.NewUpdateOrderPriorityCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, aggregate.Priority().Level())
	assert.True(t, aggregate.ManualOverride())

	history := aggregate.PriorityHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "manager", history[1].Actor())
	assert.True(t, history[1].Manual())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestUpdateOrderPriorityCommandHandler_Handle_ReleaseOverride(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderPriorityCommand(aggregate.ID(), 2, false, "manager")
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

	h := commands.NewUpdateOrderPriorityCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, aggregate.Priority().Level())
	assert.False(t, aggregate.ManualOverride())
}

func TestUpdateOrderPriorityCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewUpdateOrderPriorityCommand(id, 1, true, "manager")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("orderID", id.String()))
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderPriorityCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestUpdateOrderPriorityCommandHandler_Handle_RetriesVersionConflict(t *testing.T) {
	ctx := t.Context()
	aggregate := testAggregate(t)
	cmd, err := commands.NewUpdateOrderPriorityCommand(aggregate.ID(), 1, true, "manager")
	require.NoError(t, err)

	conflict := errs.NewVersionIsInvalidErrorWithCause("order")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(testAggregate(t), nil).Once()
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(conflict).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderPriorityCommandHandler(factory, testClock())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Update", 2)
	assert.Equal(t, 1, aggregate.Priority().Level())
}
