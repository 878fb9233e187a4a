package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateOrderStatusCommand(t *testing.T) {
	t.Run("should create valid command", func(t *testing.T) {
		id := kernel.NewUUID()

		cmd, err := commands.NewUpdateOrderStatusCommand(id, order.Processing, "ops", "picked up")

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, cmd.OrderID().IsEqual(id))
		assert.Equal(t, order.Processing, cmd.NewStatus())
		assert.Equal(t, "ops", cmd.Actor())
		assert.Equal(t, "picked up", cmd.Reason())
	})

	t.Run("should allow empty reason", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Processing, "ops", "")

		require.NoError(t, err)
	})

	t.Run("should fail with invalid UUID", func(t *testing.T) {
		var invalidID kernel.UUID

		_, err := commands.NewUpdateOrderStatusCommand(invalidID, order.Processing, "ops", "")

		require.Error(t, err)
	})

	t.Run("should fail with unknown status", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Unknown, "ops", "")

		require.Error(t, err)
	})

	t.Run("should fail without actor", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Processing, "", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "actor")
	})

	t.Run("zero-value command should fail validation", func(t *testing.T) {
		var cmd commands.UpdateOrderStatusCommand

		err := cmd.Validate()

		require.Error(t, err)
		assert.Equal(t, commands.ErrUpdateOrderStatusCommandIsNotConstructed, err)
	})
}
