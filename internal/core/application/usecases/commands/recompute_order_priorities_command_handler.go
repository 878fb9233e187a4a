package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
)

// RecomputeOrderPrioritiesCommandHandler re-evaluates the priority of every
// open order, feeding the order's age into the scorer so waiting orders
// escalate over time. Manually overridden orders keep their pinned level;
// only their score, tags, and rank are refreshed. Terminal orders are never
// touched.
//
// An order whose conditional write loses to a concurrent mutation is skipped
// rather than retried: the next scheduled run observes the winner's state.
type RecomputeOrderPrioritiesCommandHandler struct {
	uowFactory OrderUoWFactory
	scorer     services.PriorityScorer
	clock      Clock
}

// NewRecomputeOrderPrioritiesCommandHandler creates a handler for the batch recompute.
func NewRecomputeOrderPrioritiesCommandHandler(
	uowFactory OrderUoWFactory,
	clock Clock,
) RecomputeOrderPrioritiesCommandHandler {
	return RecomputeOrderPrioritiesCommandHandler{
		uowFactory: uowFactory,
		scorer:     services.NewPriorityScorer(),
		clock:      clock,
	}
}

// Handle processes the batch recompute command.
func (h *RecomputeOrderPrioritiesCommandHandler) Handle(ctx context.Context, cmd RecomputeOrderPrioritiesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregates, err := repo.GetAllOpenForRecompute(ctx)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	for _, aggregate := range aggregates {
		computed := h.scorer.Score(services.ScoreInput{
			Total:                aggregate.Totals().Total(),
			IsVIPCustomer:        aggregate.Priority().IsVIPCustomer(),
			ShippingMethod:       aggregate.ShippingMethod(),
			SpecialHandlingItems: aggregate.SpecialHandlingItemCount(),
			AgeDays:              now.Sub(aggregate.CreatedAt()).Hours() / 24,
		})
		aggregate.ApplyRecompute(computed, order.SystemActor, now)

		if err = repo.Update(ctx, aggregate); err != nil {
			if errors.Is(err, errs.ErrVersionIsInvalid) {
				// Lost to a concurrent mutation; the next run catches up.
				continue
			}
			return err
		}
	}

	return uow.Commit(ctx)
}
