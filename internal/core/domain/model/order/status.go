package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ErrInvalidTransition is the sentinel error for illegal status edges.
// Use errors.Is to classify, and errors.As with *InvalidTransitionError
// to recover the named source and target states.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError names the illegal edge of a rejected status change.
// The order is left untouched and no history entry is written when this
// error is returned.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct fulfillment workflow.
//
// State transitions:
//
//	Pending ──> Processing ──> Shipped ──> Delivered
//	   │            │
//	   └────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal: no further transitions are
// allowed, but the order record persists indefinitely for audit.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status assigned at order creation.
	Pending

	// Processing indicates the order has been accepted for fulfillment.
	Processing

	// Shipped indicates the order has left the warehouse.
	Shipped

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled before shipping. Terminal.
	// Reachable from Pending or Processing only.
	Cancelled
)

// getStatusStrings returns a map of Status values to their wire representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Processing: "processing",
		Shipped:    "shipped",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "pending",
		Processing: "processing",
		Shipped:    "shipped",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
	}
}

// getTransitions returns the legal edges of the status state machine.
// Terminal states map to empty sets.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Processing, Cancelled},
		Processing: {Shipped, Cancelled},
		Shipped:    {Delivered},
		Delivered:  {},
		Cancelled:  {},
	}
}

// StatusFromString parses a wire status name into a Status value.
// Unlike shipping methods, an unknown status name is an error: callers
// must never silently coerce a status.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status ("pending", "shipped", ...).
// Implements fmt.Stringer; safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether the edge s -> target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range getTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo validates and performs the transition s -> target.
//
// Returns:
//   - (target, nil) when the edge is legal
//   - (0, *InvalidTransitionError) naming both ends of the illegal edge
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	if !s.CanTransitionTo(target) {
		return 0, &InvalidTransitionError{From: s, To: target}
	}
	return target, nil
}
