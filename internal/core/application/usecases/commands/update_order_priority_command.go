package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateOrderPriorityCommandIsNotConstructed = errors.New(
		"UpdateOrderPriorityCommand must be created via NewUpdateOrderPriorityCommand constructor",
	)
)

// UpdateOrderPriorityCommand represents a manual priority change. With
// manual=true the order is flagged as overridden and automatic recompute
// stops touching its level; manual=false is the only sanctioned path back
// to automatic scoring.
type UpdateOrderPriorityCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	newLevel int
	manual   bool
	actor    string

	guard guard.ConstructorGuard
}

// NewUpdateOrderPriorityCommand creates a command to set an order's priority
// level directly. Validates the order ID, the level range, and the actor.
func NewUpdateOrderPriorityCommand(
	orderID kernel.UUID,
	newLevel int,
	manual bool,
	actor string,
) (UpdateOrderPriorityCommand, error) {
	cmd := UpdateOrderPriorityCommand{
		manual: manual,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setNewLevel(newLevel),
		cmd.setActor(actor),
	); err != nil {
		return UpdateOrderPriorityCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateOrderPriorityCommandIsNotConstructed if validation fails.
func (c UpdateOrderPriorityCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderPriorityCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to reprioritize.
func (c UpdateOrderPriorityCommand) OrderID() kernel.UUID {
	return c.orderID
}

// NewLevel returns the target priority level.
func (c UpdateOrderPriorityCommand) NewLevel() int {
	return c.newLevel
}

// Manual reports whether the change pins the level against automatic
// recomputation.
func (c UpdateOrderPriorityCommand) Manual() bool {
	return c.manual
}

// Actor returns the identity recorded on the history entry.
func (c UpdateOrderPriorityCommand) Actor() string {
	return c.actor
}

func (c *UpdateOrderPriorityCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateOrderPriorityCommand) setNewLevel(newLevel int) error {
	if newLevel < order.MinLevel || newLevel > order.MaxLevel {
		return errs.NewValueIsOutOfRangeError("priority level", newLevel, order.MinLevel, order.MaxLevel)
	}

	c.newLevel = newLevel
	return nil
}

func (c *UpdateOrderPriorityCommand) setActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}

	c.actor = actor
	return nil
}
