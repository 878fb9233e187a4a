package services

import (
	"math"

	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Scoring weights and thresholds. Fixed: the scorer is deterministic and
// identical inputs always produce identical outputs.
var (
	// HighValueThreshold is the order total at and above which the order is
	// classified high value and receives the high-value bonus.
	HighValueThreshold = decimal.NewFromInt(100)
)

const (
	// totalDivisor converts the order total into score points (total / 10).
	totalDivisor = 10.0

	highValueBonus = 25.0
	vipBonus       = 30.0

	overnightBonus = 40.0
	expeditedBonus = 20.0

	specialHandlingPerItem = 5.0
	specialHandlingCap     = 15.0

	agePerDay = 2.0
	ageCap    = 20.0
)

// Level thresholds on the summed score. Higher score maps to a lower
// (more urgent) level; the mapping is monotone by construction.
var levelThresholds = []struct {
	minScore float64
	level    int
}{
	{80, 1},
	{60, 2},
	{40, 3},
	{20, 4},
}

// ScoreInput carries the order attributes the scorer weighs. The caller
// supplies VIP status from its own customer lookup; unknown VIP status is
// simply false. AgeDays is zero at creation time and is only supplied by
// explicit recompute triggers (status change, scheduled re-evaluation);
// priority is never silently revised on read.
type ScoreInput struct {
	Total                decimal.Decimal
	IsVIPCustomer        bool
	ShippingMethod       order.ShippingMethod
	SpecialHandlingItems int
	AgeDays              float64
}

// PriorityScorer computes the fulfillment priority of an order from its
// attributes. It is a pure domain service: no I/O, no side effects, no error
// channel. Missing optional inputs degrade gracefully (an invalid shipping
// method contributes no urgency, negative inputs are treated as zero).
//
// The score is a weighted sum over independent non-negative factors:
// monetary total, VIP status, shipping urgency, special handling, and (on
// recompute only) order age. The level is obtained by mapping the score
// through fixed thresholds, and the tags name the bonuses that triggered.
type PriorityScorer struct{}

// NewPriorityScorer creates a new PriorityScorer instance.
func NewPriorityScorer() PriorityScorer {
	return PriorityScorer{}
}

// Score computes the priority state for the given attributes.
//
// Factor contributions:
//   - total / 10 score points (continuous, monotone in the total)
//   - +25 and the HIGH_VALUE tag when total >= HighValueThreshold
//   - +30 and the VIP tag for VIP customers
//   - +40 overnight / +20 expedited and the EXPEDITED tag; standard and
//     digital shipping carry no urgency
//   - +5 per special-handling item, capped at +15, with the
//     SPECIAL_HANDLING tag
//   - +2 per day of age, capped at +20 (recompute triggers only)
func (PriorityScorer) Score(in ScoreInput) order.Priority {
	var (
		score float64
		tags  []string
	)

	total := in.Total
	if total.IsNegative() {
		total = decimal.Zero
	}
	score += total.InexactFloat64() / totalDivisor

	isHighValue := total.GreaterThanOrEqual(HighValueThreshold)
	if isHighValue {
		score += highValueBonus
		tags = append(tags, order.TagHighValue)
	}

	if in.IsVIPCustomer {
		score += vipBonus
		tags = append(tags, order.TagVIP)
	}

	switch in.ShippingMethod {
	case order.ShippingOvernight:
		score += overnightBonus
		tags = append(tags, order.TagExpedited)
	case order.ShippingExpedited:
		score += expeditedBonus
		tags = append(tags, order.TagExpedited)
	default:
		// standard, digital, or unparseable: no urgency contribution
	}

	if in.SpecialHandlingItems > 0 {
		score += math.Min(float64(in.SpecialHandlingItems)*specialHandlingPerItem, specialHandlingCap)
		tags = append(tags, order.TagSpecialHandling)
	}

	if in.AgeDays > 0 {
		score += math.Min(in.AgeDays*agePerDay, ageCap)
	}

	return order.NewPriority(score, levelForScore(score), tags, isHighValue, in.IsVIPCustomer)
}

// levelForScore maps a score into the discrete level range. Monotone:
// a higher score never yields a higher (less urgent) level.
func levelForScore(score float64) int {
	for _, t := range levelThresholds {
		if score >= t.minScore {
			return t.level
		}
	}
	return order.MaxLevel
}
