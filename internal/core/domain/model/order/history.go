package order

import "time"

// SystemActor is the recorded actor for changes the engine makes on its own
// behalf, such as the forced deprioritization of a cancelled order.
const SystemActor = "system"

// StatusChange is an append-only audit record of one status transition.
// Entries are immutable once written; the order's current status always
// equals the most recent entry's To value.
type StatusChange struct {
	from       Status
	to         Status
	actor      string
	reason     string
	occurredAt time.Time
}

// NewStatusChange records a status transition performed by actor at occurredAt.
// From is Unknown for the initial entry written at order creation.
func NewStatusChange(from, to Status, actor, reason string, occurredAt time.Time) StatusChange {
	return StatusChange{from: from, to: to, actor: actor, reason: reason, occurredAt: occurredAt}
}

// From returns the status before the transition (Unknown for the initial entry).
func (c StatusChange) From() Status { return c.from }

// To returns the status after the transition.
func (c StatusChange) To() Status { return c.to }

// Actor returns the identity that performed the transition.
func (c StatusChange) Actor() string { return c.actor }

// Reason returns the optional free-text reason.
func (c StatusChange) Reason() string { return c.reason }

// OccurredAt returns when the transition happened.
func (c StatusChange) OccurredAt() time.Time { return c.occurredAt }

// PriorityChange is an append-only audit record of one priority level change.
// Manual reports whether a human set the level directly; automatic recomputes
// and the cancellation deprioritization record manual=false.
type PriorityChange struct {
	oldLevel   int
	newLevel   int
	actor      string
	manual     bool
	occurredAt time.Time
}

// NewPriorityChange records a priority level change. OldLevel is 0 for the
// initial entry written at order creation.
func NewPriorityChange(oldLevel, newLevel int, actor string, manual bool, occurredAt time.Time) PriorityChange {
	return PriorityChange{oldLevel: oldLevel, newLevel: newLevel, actor: actor, manual: manual, occurredAt: occurredAt}
}

// OldLevel returns the level before the change (0 for the initial entry).
func (c PriorityChange) OldLevel() int { return c.oldLevel }

// NewLevel returns the level after the change.
func (c PriorityChange) NewLevel() int { return c.newLevel }

// Actor returns the identity that made the change.
func (c PriorityChange) Actor() string { return c.actor }

// Manual reports whether a human set the level directly.
func (c PriorityChange) Manual() bool { return c.manual }

// OccurredAt returns when the change happened.
func (c PriorityChange) OccurredAt() time.Time { return c.occurredAt }
