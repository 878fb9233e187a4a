// Package order provides domain entities and business logic for order
// prioritization. It implements the Order aggregate root with lifecycle
// management, priority state, and append-only audit history.
//
// The package includes:
//   - Order: The aggregate root owning items, totals, priority, and history
//   - Status: A state machine that enforces valid order status transitions
//   - ShippingMethod: The enumerated delivery methods
//   - Totals: A value object enforcing monetary reconciliation
//   - Item: Line items belonging to exactly one order
//   - Priority: The computed score/level/tags/flags set
//   - StatusChange / PriorityChange: Immutable audit records
//
// Key business rules:
//   - Orders must have a non-empty item set whose line totals reconcile
//     with the declared subtotal within a 0.01 tolerance
//   - Order status follows pending -> processing -> shipped -> delivered,
//     with cancellation allowed from pending or processing only
//   - A manually overridden priority level is never replaced by automatic
//     recomputation; cancellation is the single documented exception
//   - History entries are immutable once written and the current state
//     always equals the most recent entry's new value
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
