// Package ports defines repository and unit-of-work interfaces for the
// fulfillment domain. These interfaces establish contracts between the
// domain layer and infrastructure, enabling dependency inversion and
// testability with in-memory or mock implementations.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Implementations must persist the order row, its items, and both history
// lists as one unit, and must enforce optimistic concurrency on Update.
type OrderRepository interface {
	// Add persists a new order aggregate together with its items and initial
	// history entries. The order must be valid and not already exist.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using a
	// conditional write on the version the aggregate was read at.
	// Returns errs.ErrVersionIsInvalid (wrapped) when the stored version no
	// longer matches: the caller lost a concurrent-mutation race and may
	// re-read and retry. New history entries are appended; existing entries
	// are never rewritten.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including
	// items and the full status and priority history.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllOpenForRecompute retrieves all orders eligible for automatic
	// priority re-evaluation: orders in a non-terminal status. Manually
	// overridden orders are included; recompute refreshes their score and
	// tags while leaving the level pinned.
	GetAllOpenForRecompute(ctx context.Context) ([]*order.Order, error)
}
