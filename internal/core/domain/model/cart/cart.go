package cart

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	// taxRate is applied to the subtotal of every non-empty cart.
	taxRate = 0.05
	// deliveryFee is the flat fee charged on every non-empty cart.
	deliveryFee = 40.0
)

var (
	// ErrCartIsNotConstructed is returned when a Cart was not created through
	// NewCart or RestoreCart.
	ErrCartIsNotConstructed = errors.New("Cart must be created via NewCart constructor")

	// ErrLineNotFound is returned when mutating a line that is not in the cart.
	ErrLineNotFound = errs.NewObjectNotFoundError("menuItemId", "cart line")
)

// Cart is the aggregate holding a customer's in-progress selection.
//
// Invariants:
//   - Exactly one cart per customer (enforced by persistence).
//   - All lines reference the same restaurant; adding a line from a
//     different restaurant discards the existing lines first.
//   - When the last line is removed the restaurant reference is cleared.
type Cart struct {
	customerID   kernel.UUID
	restaurantID *kernel.UUID
	lines        []Line
	guard        guard.ConstructorGuard
}

// Bill is the monetary breakdown derived from the cart's current lines.
// Total always equals Subtotal + Tax + DeliveryFee.
type Bill struct {
	Subtotal    float64
	Tax         float64
	DeliveryFee float64
	Total       float64
}

// NewCart creates an empty cart for a customer.
func NewCart(customerID kernel.UUID) (*Cart, error) {
	if err := customerID.Validate(); err != nil {
		return nil, err
	}

	return &Cart{
		customerID: customerID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestoreCart reconstructs a cart from persistence with its restaurant
// reference and lines. An empty cart is restored with a nil restaurantID.
func RestoreCart(customerID kernel.UUID, restaurantID *kernel.UUID, lines []Line) (*Cart, error) {
	if err := customerID.Validate(); err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if restaurantID == nil {
			return nil, errs.NewValueIsRequiredError("restaurantId")
		}
		if err := restaurantID.Validate(); err != nil {
			return nil, err
		}
	}

	restored := make([]Line, len(lines))
	copy(restored, lines)

	return &Cart{
		customerID:   customerID,
		restaurantID: restaurantID,
		lines:        restored,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Cart was created through a constructor.
func (c *Cart) Validate() error {
	if c == nil {
		return ErrCartIsNotConstructed
	}
	return c.guard.Validate(ErrCartIsNotConstructed)
}

// CustomerID returns the owning customer's identifier.
func (c *Cart) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantID returns the restaurant all lines belong to, or nil for an
// empty cart.
func (c *Cart) RestaurantID() *kernel.UUID {
	return c.restaurantID
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// AddLine adds a menu item to the cart. Adding an item from a different
// restaurant than the cart's current one discards all existing lines before
// inserting the new line. Adding an item already in the cart accumulates its
// quantity.
func (c *Cart) AddLine(restaurantID kernel.UUID, line Line) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	if c.restaurantID != nil && !c.restaurantID.IsEqual(restaurantID) {
		c.lines = nil
	}
	c.restaurantID = &restaurantID

	for i, existing := range c.lines {
		if existing.menuItemID.IsEqual(line.menuItemID) {
			c.lines[i].quantity += line.quantity
			return nil
		}
	}

	c.lines = append(c.lines, line)
	return nil
}

// ChangeQuantity sets the absolute quantity of an existing line. A quantity
// of zero or less removes the line; removing the last line clears the
// restaurant reference. Returns ErrLineNotFound if the item is not in the
// cart.
func (c *Cart) ChangeQuantity(menuItemID kernel.UUID, quantity int) error {
	if err := menuItemID.Validate(); err != nil {
		return err
	}

	for i := range c.lines {
		if !c.lines[i].menuItemID.IsEqual(menuItemID) {
			continue
		}

		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			if len(c.lines) == 0 {
				c.restaurantID = nil
			}
			return nil
		}

		c.lines[i].quantity = quantity
		return nil
	}

	return ErrLineNotFound
}

// RemoveLine deletes a line from the cart. Removing the last line clears the
// restaurant reference.
func (c *Cart) RemoveLine(menuItemID kernel.UUID) error {
	return c.ChangeQuantity(menuItemID, 0)
}

// Clear removes all lines and the restaurant reference.
func (c *Cart) Clear() {
	c.lines = nil
	c.restaurantID = nil
}

// Bill recomputes the monetary breakdown from the current lines. It is pure:
// calling it twice in a row yields the same result, and an empty cart bills
// zero for every component including the delivery fee.
func (c *Cart) Bill() Bill {
	var subtotal float64
	for _, line := range c.lines {
		subtotal += line.Subtotal()
	}

	if subtotal == 0 {
		return Bill{}
	}

	tax := subtotal * taxRate
	return Bill{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: deliveryFee,
		Total:       subtotal + tax + deliveryFee,
	}
}
