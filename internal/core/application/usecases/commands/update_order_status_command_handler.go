package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// UpdateOrderStatusCommandHandler applies status transitions through the
// aggregate's state machine. Illegal edges are rejected without mutation and
// without a history entry, returning an error that names the invalid edge.
//
// A successful transition is also a recompute trigger: the priority score
// and tags are refreshed with the order's current age while a manual
// override keeps the level pinned. Transitioning to cancelled instead forces
// the priority to its minimum regardless of the override, the one case
// where the override is overridden.
//
// Lost optimistic-concurrency races and transient storage faults are
// replayed with a fresh read up to the bounded retry limit before the
// failure is surfaced.
type UpdateOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	scorer     services.PriorityScorer
	clock      Clock
}

// NewUpdateOrderStatusCommandHandler creates a handler for status transitions.
func NewUpdateOrderStatusCommandHandler(uowFactory OrderUoWFactory, clock Clock) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		scorer:     services.NewPriorityScorer(),
		clock:      clock,
	}
}

// Handle processes the status transition command.
func (h *UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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

		now := h.clock.Now()
		if err = aggregate.ChangeStatus(cmd.NewStatus(), cmd.Actor(), cmd.Reason(), now); err != nil {
			return err
		}

		// Cancellation already deprioritized inside the aggregate; every
		// other transition refreshes the score with the order's age.
		if !aggregate.Status().IsTerminal() {
			computed := h.scorer.Score(services.ScoreInput{
				Total:                aggregate.Totals().Total(),
				IsVIPCustomer:        aggregate.Priority().IsVIPCustomer(),
				ShippingMethod:       aggregate.ShippingMethod(),
				SpecialHandlingItems: aggregate.SpecialHandlingItemCount(),
				AgeDays:              now.Sub(aggregate.CreatedAt()).Hours() / 24,
			})
			aggregate.ApplyRecompute(computed, order.SystemActor, now)
		}

		if err = repo.Update(ctx, aggregate); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
}
