package order

import "math"

// Priority level bounds. A lower level is more urgent; MaxLevel is the
// least urgent bucket and the forced level for cancelled orders.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Priority tag labels attached by the scorer when the corresponding
// bonus factor triggers.
const (
	TagVIP             = "VIP"
	TagHighValue       = "HIGH_VALUE"
	TagExpedited       = "EXPEDITED"
	TagSpecialHandling = "SPECIAL_HANDLING"
)

// rankScoreCap bounds the score's contribution to the fulfillment rank so
// one level band can never overlap the next.
const rankScoreCap = 999999

// FulfillmentRank combines a priority level and score into a single
// sortable rank: ascending rank means more urgent. Level dominates
// (ascending), score breaks ties within a level (descending).
func FulfillmentRank(level int, score float64) float64 {
	return float64(level)*1e6 - math.Min(score, rankScoreCap)
}

// Priority is the computed prioritization state of an order: the continuous
// score, the discrete level bucket, classification flags, and human-readable
// tags. It is a plain immutable value produced by the scorer or restored
// from persistence; NewPriority clamps rather than fails, because automatic
// scoring has no error channel.
type Priority struct {
	score           float64
	level           int
	tags            []string
	isHighValue     bool
	isVIPCustomer   bool
	fulfillmentRank float64
}

// NewPriority creates a Priority, clamping the score to non-negative and the
// level into [MinLevel, MaxLevel], and deriving the fulfillment rank.
func NewPriority(score float64, level int, tags []string, isHighValue, isVIPCustomer bool) Priority {
	if score < 0 {
		score = 0
	}
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	copied := make([]string, len(tags))
	copy(copied, tags)

	return Priority{
		score:           score,
		level:           level,
		tags:            copied,
		isHighValue:     isHighValue,
		isVIPCustomer:   isVIPCustomer,
		fulfillmentRank: FulfillmentRank(level, score),
	}
}

// Score returns the continuous weighted priority score.
func (p Priority) Score() float64 {
	return p.score
}

// Level returns the discrete priority level (lower = more urgent).
func (p Priority) Level() int {
	return p.level
}

// Tags returns a copy of the human-readable bonus labels.
func (p Priority) Tags() []string {
	tags := make([]string, len(p.tags))
	copy(tags, p.tags)
	return tags
}

// IsHighValue reports whether the order total crossed the high-value threshold.
func (p Priority) IsHighValue() bool {
	return p.isHighValue
}

// IsVIPCustomer reports whether the customer was flagged VIP at scoring time.
func (p Priority) IsVIPCustomer() bool {
	return p.isVIPCustomer
}

// FulfillmentRank returns the composite sort rank (ascending = more urgent).
func (p Priority) FulfillmentRank() float64 {
	return p.fulfillmentRank
}

// withLevel returns a copy with the level replaced and the rank rederived.
// Used when a manual override pins the level while the score is refreshed.
func (p Priority) withLevel(level int) Priority {
	return NewPriority(p.score, level, p.tags, p.isHighValue, p.isVIPCustomer)
}
