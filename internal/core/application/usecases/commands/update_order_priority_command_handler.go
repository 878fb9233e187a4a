package commands

import (
	"context"
)

// UpdateOrderPriorityCommandHandler applies manual priority overrides.
// The score and tags are left as last computed; once overridden they are
// informational, not authoritative. Lost optimistic-concurrency races and
// transient storage faults are replayed with a fresh read up to the bounded
// retry limit, so two concurrent overrides of the same order serialize:
// each produces its own history entry and the stored level always matches
// the most recent entry.
type UpdateOrderPriorityCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      Clock
}

// NewUpdateOrderPriorityCommandHandler creates a handler for manual priority changes.
func NewUpdateOrderPriorityCommandHandler(uowFactory OrderUoWFactory, clock Clock) UpdateOrderPriorityCommandHandler {
	return UpdateOrderPriorityCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle processes the priority override command.
func (h *UpdateOrderPriorityCommandHandler) Handle(ctx context.Context, cmd UpdateOrderPriorityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return withConflictRetry(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		repo := uow.OrderRepository()
		aggregate, err := repo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		if err = aggregate.OverridePriority(cmd.NewLevel(), cmd.Actor(), cmd.Manual(), h.clock.Now()); err != nil {
			return err
		}

		if err = repo.Update(ctx, aggregate); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
}
