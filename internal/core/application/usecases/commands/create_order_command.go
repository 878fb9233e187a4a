package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// OrderItemInput carries one requested line item. Deep validation (positive
// quantity, non-negative price) happens in the domain; the command only
// requires the set to be non-empty.
type OrderItemInput struct {
	ProductID               string
	Name                    string
	Quantity                int
	UnitPrice               decimal.Decimal
	IsDigital               bool
	RequiresSpecialHandling bool
}

// OrderAmountsInput carries the declared monetary breakdown. The domain
// rejects the order if total does not reconcile with
// subtotal + tax + shipping - discount within tolerance; a mismatch signals
// a client-side calculation bug and is never silently corrected.
type OrderAmountsInput struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CreateOrderCommand represents a request to ingest a new order with a
// computed fulfillment priority. The VIP flag is supplied by the caller's
// customer lookup; the engine records it, it does not resolve it.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, "jane@example.com", "Jane Doe", nil,
//	    items, amounts, "overnight", true, "checkout-service")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clock)
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	customerEmail  string
	customerName   string
	customerID     *string
	items          []OrderItemInput
	amounts        OrderAmountsInput
	shippingMethod string
	isVIPCustomer  bool
	actor          string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to ingest a new order.
// Validates that the order ID is valid, the customer email and actor are
// present, and at least one item was supplied. Returns an error if any
// validation fails.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerEmail string,
	customerName string,
	customerID *string,
	items []OrderItemInput,
	amounts OrderAmountsInput,
	shippingMethod string,
	isVIPCustomer bool,
	actor string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		customerName:   customerName,
		customerID:     customerID,
		amounts:        amounts,
		shippingMethod: shippingMethod,
		isVIPCustomer:  isVIPCustomer,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerEmail(customerEmail),
		cmd.setItems(items),
		cmd.setActor(actor),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerEmail returns the customer's email address.
func (c CreateOrderCommand) CustomerEmail() string {
	return c.customerEmail
}

// CustomerName returns the customer's display name.
func (c CreateOrderCommand) CustomerName() string {
	return c.customerName
}

// CustomerID returns the optional external customer identifier.
func (c CreateOrderCommand) CustomerID() *string {
	return c.customerID
}

// Items returns the requested line items.
func (c CreateOrderCommand) Items() []OrderItemInput {
	return c.items
}

// Amounts returns the declared monetary breakdown.
func (c CreateOrderCommand) Amounts() OrderAmountsInput {
	return c.amounts
}

// ShippingMethod returns the raw shipping method name. An unparseable
// value is treated as standard shipping, not an error.
func (c CreateOrderCommand) ShippingMethod() string {
	return c.shippingMethod
}

// IsVIPCustomer returns the caller-supplied VIP flag.
func (c CreateOrderCommand) IsVIPCustomer() bool {
	return c.isVIPCustomer
}

// Actor returns the identity recorded on the initial history entries.
func (c CreateOrderCommand) Actor() string {
	return c.actor
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("customer email")
	}

	c.customerEmail = email
	return nil
}

func (c *CreateOrderCommand) setItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredErrorWithCause("items",
			fmt.Errorf("an order must contain at least one item"))
	}

	c.items = make([]OrderItemInput, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}

	c.actor = actor
	return nil
}
