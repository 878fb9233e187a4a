package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of the prioritization engine. It owns the
// line items, the monetary totals, the computed priority state, and the
// append-only status and priority history.
//
// Order maintains these invariants:
//   - the item set is non-empty and the subtotal reconciles with the sum of
//     item line totals within ReconciliationTolerance
//   - the priority level always lies in [MinLevel, MaxLevel]
//   - status transitions follow the state machine defined by Status
//   - the current status and priority level always equal the most recent
//     history entry's new value
//   - once ManualOverride is true, automatic recomputation leaves the level
//     untouched; cancellation is the single documented exception and forces
//     the priority to its minimum regardless of the override
//
// Orders are never physically deleted; terminal states stop further status
// transitions but the record persists for audit and reporting.
type Order struct {
	id             kernel.UUID
	customerEmail  string
	customerName   string
	customerID     *string
	items          []Item
	totals         Totals
	shippingMethod ShippingMethod
	status         Status
	priority       Priority
	manualOverride bool

	// version backs the repository's conditional update; it is bumped by
	// the persistence adapter, never by domain logic.
	version int

	createdAt time.Time
	updatedAt time.Time

	statusHistory   []StatusChange
	priorityHistory []PriorityChange

	isConstructed bool
}

// NewOrder creates a new Order in Pending status together with its initial
// status and priority history entries, so that aggregate, history, and
// priority state are born consistent and can be persisted as one atomic unit.
//
// The priority argument is the scorer's output for the order's attributes;
// the initial PriorityChange records it with manual=false.
//
// Returns a validation error naming the offending field if any invariant
// fails; on error the order is not created.
func NewOrder(
	id kernel.UUID,
	customerEmail string,
	customerName string,
	customerID *string,
	items []Item,
	totals Totals,
	shippingMethod ShippingMethod,
	priority Priority,
	actor string,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		priority:      priority,
		isConstructed: true,
		createdAt:     now,
		updatedAt:     now,
		version:       1,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customerEmail, customerName, customerID),
		o.setItems(items),
		o.setTotals(totals),
		o.setShippingMethod(shippingMethod),
		validateActor(actor),
	); err != nil {
		return nil, err
	}

	o.statusHistory = []StatusChange{
		NewStatusChange(Unknown, Pending, actor, "order created", now),
	}
	o.priorityHistory = []PriorityChange{
		NewPriorityChange(0, priority.Level(), actor, false, now),
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence, bypassing the
// creation-time history bootstrapping but re-validating every invariant.
// Used only by repository adapters.
func RestoreOrder(
	id kernel.UUID,
	customerEmail string,
	customerName string,
	customerID *string,
	items []Item,
	totals Totals,
	shippingMethod ShippingMethod,
	status Status,
	priority Priority,
	manualOverride bool,
	version int,
	createdAt time.Time,
	updatedAt time.Time,
	statusHistory []StatusChange,
	priorityHistory []PriorityChange,
) (*Order, error) {
	o := &Order{
		priority:        priority,
		manualOverride:  manualOverride,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		statusHistory:   statusHistory,
		priorityHistory: priorityHistory,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customerEmail, customerName, customerID),
		o.setItems(items),
		o.setTotals(totals),
		o.setShippingMethod(shippingMethod),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a
// factory method. Call when reconstructing orders from persistence.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerEmail returns the customer's email address.
func (o *Order) CustomerEmail() string {
	return o.customerEmail
}

// CustomerName returns the customer's display name.
func (o *Order) CustomerName() string {
	return o.customerName
}

// CustomerID returns the optional external customer identifier.
// Returns nil when the order was placed without a customer account.
func (o *Order) CustomerID() *string {
	return o.customerID
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Totals returns the monetary breakdown of the order.
func (o *Order) Totals() Totals {
	return o.totals
}

// ShippingMethod returns the order's shipping method.
func (o *Order) ShippingMethod() ShippingMethod {
	return o.shippingMethod
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Priority returns the current computed priority state.
func (o *Order) Priority() Priority {
	return o.priority
}

// ManualOverride reports whether a human has set the priority level directly.
func (o *Order) ManualOverride() bool {
	return o.manualOverride
}

// Version returns the optimistic-concurrency version the aggregate was read at.
func (o *Order) Version() int {
	return o.version
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the last mutation timestamp.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// StatusHistory returns a copy of the append-only status audit trail.
func (o *Order) StatusHistory() []StatusChange {
	history := make([]StatusChange, len(o.statusHistory))
	copy(history, o.statusHistory)
	return history
}

// PriorityHistory returns a copy of the append-only priority audit trail.
func (o *Order) PriorityHistory() []PriorityChange {
	history := make([]PriorityChange, len(o.priorityHistory))
	copy(history, o.priorityHistory)
	return history
}

// SpecialHandlingItemCount returns the number of line items flagged as
// requiring special handling. Input to the priority scorer.
func (o *Order) SpecialHandlingItemCount() int {
	count := 0
	for _, item := range o.items {
		if item.RequiresSpecialHandling() {
			count++
		}
	}
	return count
}

// ChangeStatus validates and applies a status transition, appending a
// StatusChange entry. Illegal edges are rejected with an
// *InvalidTransitionError naming both ends, without mutation and without a
// history entry.
//
// Transitioning to Cancelled additionally forces the priority to its minimum
// urgency (score 0, level MaxLevel) regardless of ManualOverride: a
// cancelled order is deprioritized unconditionally. This is the only case
// where the override is overridden; the forced change is recorded as a
// PriorityChange with actor SystemActor and manual=false.
func (o *Order) ChangeStatus(target Status, actor, reason string, now time.Time) error {
	if err := validateActor(actor); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	o.statusHistory = append(o.statusHistory, NewStatusChange(o.status, newStatus, actor, reason, now))
	o.status = newStatus
	o.updatedAt = now

	if newStatus == Cancelled {
		o.deprioritize(now)
	}

	return nil
}

// OverridePriority sets the priority level directly. With manual=true the
// order is flagged as manually overridden and automatic recomputation will
// no longer touch the level; manual=false is the sanctioned path back to
// automatic scoring. The score and tags are left as last computed; they
// are informational once overridden, not authoritative.
//
// Returns a ValueIsOutOfRangeError if newLevel lies outside
// [MinLevel, MaxLevel].
func (o *Order) OverridePriority(newLevel int, actor string, manual bool, now time.Time) error {
	if err := validateActor(actor); err != nil {
		return err
	}
	if newLevel < MinLevel || newLevel > MaxLevel {
		return errs.NewValueIsOutOfRangeError("priority level", newLevel, MinLevel, MaxLevel)
	}

	oldLevel := o.priority.Level()
	o.priority = o.priority.withLevel(newLevel)
	o.manualOverride = manual
	o.priorityHistory = append(o.priorityHistory, NewPriorityChange(oldLevel, newLevel, actor, manual, now))
	o.updatedAt = now

	return nil
}

// ApplyRecompute refreshes the priority state from a fresh scorer result.
// Score, tags, and classification flags are always updated; the level is
// kept at its overridden value while ManualOverride is true. A
// PriorityChange entry is appended only when the effective level changes.
//
// Terminal orders are not recomputed; callers filter them out before
// invoking the scorer.
func (o *Order) ApplyRecompute(computed Priority, actor string, now time.Time) {
	oldLevel := o.priority.Level()

	if o.manualOverride {
		computed = computed.withLevel(oldLevel)
	}

	o.priority = computed
	o.updatedAt = now

	if computed.Level() != oldLevel {
		o.priorityHistory = append(o.priorityHistory,
			NewPriorityChange(oldLevel, computed.Level(), actor, false, now))
	}
}

// deprioritize forces the priority to its least urgent value. Tags and
// classification flags are retained; they describe the order, not its queue
// position.
func (o *Order) deprioritize(now time.Time) {
	oldLevel := o.priority.Level()
	o.priority = NewPriority(0, MaxLevel, o.priority.Tags(), o.priority.IsHighValue(), o.priority.IsVIPCustomer())
	o.priorityHistory = append(o.priorityHistory,
		NewPriorityChange(oldLevel, MaxLevel, SystemActor, false, now))
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomer(email, name string, customerID *string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("customer email")
	}
	if customerID != nil && *customerID == "" {
		return errs.NewValueIsRequiredError("customer id")
	}
	o.customerEmail = email
	o.customerName = name
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setTotals(totals Totals) error {
	if err := totals.Validate(); err != nil {
		return err
	}

	sum := sumLineTotals(o.items)
	if sum.Sub(totals.Subtotal()).Abs().GreaterThan(ReconciliationTolerance) {
		return errs.NewValueIsInvalidErrorWithCause("subtotal",
			fmt.Errorf("declared subtotal %s does not match item line totals %s", totals.Subtotal(), sum))
	}

	// The declared total is also held to the tolerance against the amount
	// the line totals themselves produce, so per-field drifts cannot stack.
	computed := sum.Add(totals.Tax()).Add(totals.Shipping()).Sub(totals.Discount())
	if computed.Sub(totals.Total()).Abs().GreaterThan(ReconciliationTolerance) {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("declared total %s does not match total %s computed from item line totals",
				totals.Total(), computed))
	}

	o.totals = totals
	return nil
}

func (o *Order) setShippingMethod(method ShippingMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.shippingMethod = method
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func validateActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}
	return nil
}
