package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrRecomputeOrderPrioritiesCommandIsNotConstructed = errors.New(
		"RecomputeOrderPrioritiesCommand must be created via NewRecomputeOrderPrioritiesCommand constructor",
	)
)

// RecomputeOrderPrioritiesCommand triggers the scheduled re-evaluation of
// every open order's priority. This is a parameterless batch command invoked
// by the recompute job.
type RecomputeOrderPrioritiesCommand struct {
	guard guard.ConstructorGuard
}

// NewRecomputeOrderPrioritiesCommand creates the batch recompute command.
func NewRecomputeOrderPrioritiesCommand() RecomputeOrderPrioritiesCommand {
	return RecomputeOrderPrioritiesCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c RecomputeOrderPrioritiesCommand) Validate() error {
	return c.guard.Validate(ErrRecomputeOrderPrioritiesCommandIsNotConstructed)
}
