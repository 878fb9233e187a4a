package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ShippingMethod represents how an order is delivered to the customer.
// Urgency weighting for priority scoring lives in the scorer, not here;
// the method itself only knows its identity and wire name.
type ShippingMethod int

const (
	// ShippingUnknown represents an invalid or undefined shipping method.
	ShippingUnknown ShippingMethod = iota

	// ShippingStandard is the default ground delivery method.
	ShippingStandard

	// ShippingExpedited is accelerated delivery.
	ShippingExpedited

	// ShippingOvernight is next-day delivery.
	ShippingOvernight

	// ShippingDigital is electronic fulfillment; no physical shipment occurs,
	// so it carries no shipping urgency.
	ShippingDigital
)

func getShippingMethodStrings() map[ShippingMethod]string {
	return map[ShippingMethod]string{
		ShippingUnknown:   "unknown",
		ShippingStandard:  "standard",
		ShippingExpedited: "expedited",
		ShippingOvernight: "overnight",
		ShippingDigital:   "digital",
	}
}

func getValidShippingMethodStrings() map[ShippingMethod]string {
	//nolint:exhaustive // ShippingUnknown is intentionally excluded as it's invalid
	return map[ShippingMethod]string{
		ShippingStandard:  "standard",
		ShippingExpedited: "expedited",
		ShippingOvernight: "overnight",
		ShippingDigital:   "digital",
	}
}

// ShippingMethodFromString parses a wire shipping method name.
// A missing or unrecognized name falls back to ShippingStandard rather than
// failing: an unparseable method means no urgency bonus, not a rejected order.
func ShippingMethodFromString(s string) ShippingMethod {
	for method, name := range getValidShippingMethodStrings() {
		if name == s {
			return method
		}
	}
	return ShippingStandard
}

// Validate checks if the ShippingMethod value is valid.
func (m ShippingMethod) Validate() error {
	if _, ok := getValidShippingMethodStrings()[m]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("shipping method",
			fmt.Errorf("%d is not a valid shipping method", m))
	}
	return nil
}

// String returns the wire name of the shipping method.
// Implements fmt.Stringer; safe to call on any value.
func (m ShippingMethod) String() string {
	if str, ok := getShippingMethodStrings()[m]; ok {
		return str
	}
	return "unknown"
}
