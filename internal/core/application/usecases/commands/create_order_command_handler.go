package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// CreateOrderCommandHandler handles the business logic for order ingestion:
// builds the domain aggregate from the command input, computes the initial
// fulfillment priority, and persists the order, its items, and its initial
// status and priority history entries as one atomic unit. Partial writes are
// never observable: the transaction either commits everything or nothing.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, NewSystemClock())
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order ingestion failed: %w", err)
//	}
//	fmt.Printf("order %s created at priority level %d",
//	    created.ID(), created.Priority().Level())
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	scorer     services.PriorityScorer
	clock      Clock
}

// NewCreateOrderCommandHandler creates a handler for order ingestion.
// Requires an OrderUoWFactory for transactional persistence and a Clock for
// creation timestamps.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, clock Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		scorer:     services.NewPriorityScorer(),
		clock:      clock,
	}
}

// Handle processes the order ingestion command and returns the created
// aggregate with its computed priority. Validation failures are returned
// before any write; order age contributes nothing at creation time.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(cmd.Items()))
	specialHandling := 0
	for _, input := range cmd.Items() {
		item, err := order.NewItem(
			input.ProductID,
			input.Name,
			input.Quantity,
			input.UnitPrice,
			input.IsDigital,
			input.RequiresSpecialHandling,
		)
		if err != nil {
			return nil, err
		}
		if item.RequiresSpecialHandling() {
			specialHandling++
		}
		items = append(items, item)
	}

	amounts := cmd.Amounts()
	totals, err := order.NewTotals(amounts.Subtotal, amounts.Tax, amounts.Shipping, amounts.Discount, amounts.Total)
	if err != nil {
		return nil, err
	}

	method := order.ShippingMethodFromString(cmd.ShippingMethod())

	priority := h.scorer.Score(services.ScoreInput{
		Total:                totals.Total(),
		IsVIPCustomer:        cmd.IsVIPCustomer(),
		ShippingMethod:       method,
		SpecialHandlingItems: specialHandling,
	})

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerEmail(),
		cmd.CustomerName(),
		cmd.CustomerID(),
		items,
		totals,
		method,
		priority,
		cmd.Actor(),
		h.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	// Transient storage faults replay the whole write. The order ID is
	// fixed by the command, so a replay after a write that actually landed
	// fails on the duplicate key instead of inserting twice.
	err = withConflictRetry(ctx, func() error {
		uow := h.uowFactory.Create()
		if beginErr := uow.Begin(ctx); beginErr != nil {
			return beginErr
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if addErr := uow.OrderRepository().Add(ctx, aggregate); addErr != nil {
			return addErr
		}

		return uow.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return aggregate, nil
}
