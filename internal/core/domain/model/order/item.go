package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrItemIsNotConstructed is returned when an Item instance was not created
// through the NewItem or RestoreItem factory methods.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is a line item belonging to exactly one Order. Items are immutable
// once the order is created; quantity must be positive and unit price
// non-negative. The line total is derived as quantity * unit price.
type Item struct {
	productID               string
	name                    string
	quantity                int
	unitPrice               decimal.Decimal
	lineTotal               decimal.Decimal
	isDigital               bool
	requiresSpecialHandling bool

	isConstructed bool
}

// NewItem creates a validated line item, deriving the line total from
// quantity and unit price.
func NewItem(productID, name string, quantity int, unitPrice decimal.Decimal,
	isDigital, requiresSpecialHandling bool,
) (Item, error) {
	if productID == "" {
		return Item{}, errs.NewValueIsRequiredError("product id")
	}
	if quantity <= 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	if unitPrice.IsNegative() {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("unit price",
			fmt.Errorf("%s must not be negative", unitPrice))
	}

	return Item{
		productID:               productID,
		name:                    name,
		quantity:                quantity,
		unitPrice:               unitPrice,
		lineTotal:               unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		isDigital:               isDigital,
		requiresSpecialHandling: requiresSpecialHandling,
		isConstructed:           true,
	}, nil
}

// RestoreItem reconstructs a line item from persistence with its stored
// line total. Used only by repository adapters.
func RestoreItem(productID, name string, quantity int, unitPrice, lineTotal decimal.Decimal,
	isDigital, requiresSpecialHandling bool,
) (Item, error) {
	item, err := NewItem(productID, name, quantity, unitPrice, isDigital, requiresSpecialHandling)
	if err != nil {
		return Item{}, err
	}
	item.lineTotal = lineTotal
	return item, nil
}

// sumLineTotals adds up the line totals of a set of items.
func sumLineTotals(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Validate ensures the Item instance was created through a constructor.
func (i Item) Validate() error {
	if !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// ProductID returns the product identity of the line item.
func (i Item) ProductID() string {
	return i.productID
}

// Name returns the display name of the product.
func (i Item) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the price per unit.
func (i Item) UnitPrice() decimal.Decimal {
	return i.unitPrice
}

// LineTotal returns quantity * unit price.
func (i Item) LineTotal() decimal.Decimal {
	return i.lineTotal
}

// IsDigital reports whether the item is fulfilled electronically.
func (i Item) IsDigital() bool {
	return i.isDigital
}

// RequiresSpecialHandling reports whether the item needs special
// warehouse handling (fragile, hazardous, oversized).
func (i Item) RequiresSpecialHandling() bool {
	return i.requiresSpecialHandling
}
