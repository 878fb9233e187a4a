// Package services contains stateless domain services that implement
// business logic spanning order attributes without owning state.
//
// The package includes:
//   - PriorityScorer: pure, deterministic computation of an order's
//     fulfillment priority (score, level, tags, classification flags)
//
// Domain services here perform no I/O and have no error channel; they
// degrade gracefully on missing optional inputs so callers can invoke
// them unconditionally.
package services
