package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
		"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
	)
)

// UpdateOrderStatusCommand represents a request to move an order along its
// status state machine. The reason is optional free text recorded in the
// audit trail; the actor is recorded, never authenticated.
type UpdateOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	newStatus order.Status
	actor     string
	reason    string

	guard guard.ConstructorGuard
}

// NewUpdateOrderStatusCommand creates a command to change an order's status.
// Validates the order ID, the target status value, and the actor. Whether
// the edge from the current status is legal is decided by the aggregate at
// handling time.
func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	newStatus order.Status,
	actor string,
	reason string,
) (UpdateOrderStatusCommand, error) {
	cmd := UpdateOrderStatusCommand{
		reason: reason,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setNewStatus(newStatus),
		cmd.setActor(actor),
	); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateOrderStatusCommandIsNotConstructed if validation fails.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// NewStatus returns the target status.
func (c UpdateOrderStatusCommand) NewStatus() order.Status {
	return c.newStatus
}

// Actor returns the identity recorded on the history entry.
func (c UpdateOrderStatusCommand) Actor() string {
	return c.actor
}

// Reason returns the optional free-text reason.
func (c UpdateOrderStatusCommand) Reason() string {
	return c.reason
}

func (c *UpdateOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateOrderStatusCommand) setNewStatus(newStatus order.Status) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}

	c.newStatus = newStatus
	return nil
}

func (c *UpdateOrderStatusCommand) setActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}

	c.actor = actor
	return nil
}
