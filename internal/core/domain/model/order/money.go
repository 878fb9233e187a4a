package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ReconciliationTolerance is the maximum absolute difference allowed between
// a declared amount and its recomputed counterpart (0.01 currency units).
// A mismatch beyond the tolerance signals a client-side calculation bug and
// is rejected rather than silently corrected.
var ReconciliationTolerance = decimal.New(1, -2)

// ErrTotalsAreNotConstructed is returned when a Totals instance was not
// created through the NewTotals factory method.
var ErrTotalsAreNotConstructed = errors.New("Totals must be created via NewTotals constructor")

// Totals is an immutable value object holding the monetary breakdown of an
// order. It enforces two invariants at construction:
//   - every component is non-negative and the total is strictly positive
//   - total = subtotal + tax + shipping - discount within ReconciliationTolerance
type Totals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	shipping decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal

	isConstructed bool
}

// NewTotals creates a validated Totals value object.
//
// Returns a ValueIsInvalidError naming the offending field when a component
// is negative, the total is non-positive, or the declared total does not
// reconcile with subtotal + tax + shipping - discount within tolerance.
func NewTotals(subtotal, tax, shipping, discount, total decimal.Decimal) (Totals, error) {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", subtotal},
		{"tax", tax},
		{"shipping", shipping},
		{"discount", discount},
	} {
		if f.value.IsNegative() {
			return Totals{}, errs.NewValueIsInvalidErrorWithCause(f.name,
				fmt.Errorf("%s must not be negative", f.value))
		}
	}

	if !total.IsPositive() {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s is not greater than 0", total))
	}

	computed := subtotal.Add(tax).Add(shipping).Sub(discount)
	if computed.Sub(total).Abs().GreaterThan(ReconciliationTolerance) {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("declared total %s does not match computed total %s", total, computed))
	}

	return Totals{
		subtotal:      subtotal,
		tax:           tax,
		shipping:      shipping,
		discount:      discount,
		total:         total,
		isConstructed: true,
	}, nil
}

// Validate ensures the Totals instance was created through NewTotals.
func (t Totals) Validate() error {
	if !t.isConstructed {
		return ErrTotalsAreNotConstructed
	}
	return nil
}

// Subtotal returns the sum of item line totals.
func (t Totals) Subtotal() decimal.Decimal {
	return t.subtotal
}

// Tax returns the tax amount.
func (t Totals) Tax() decimal.Decimal {
	return t.tax
}

// Shipping returns the shipping cost.
func (t Totals) Shipping() decimal.Decimal {
	return t.shipping
}

// Discount returns the discount amount.
func (t Totals) Discount() decimal.Decimal {
	return t.discount
}

// Total returns the declared order total.
func (t Totals) Total() decimal.Decimal {
	return t.total
}
