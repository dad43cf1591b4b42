package cart

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Line is one cart position: a menu item with the unit price snapshotted at
// the moment it was added, so later menu edits do not change an open cart.
type Line struct {
	menuItemID kernel.UUID
	name       string
	unitPrice  float64
	quantity   int
}

// NewLine creates a cart line. Quantity must be positive and the unit price
// non-negative.
func NewLine(menuItemID kernel.UUID, name string, unitPrice float64, quantity int) (Line, error) {
	if err := menuItemID.Validate(); err != nil {
		return Line{}, err
	}
	if name == "" {
		return Line{}, errs.NewValueIsRequiredError("name")
	}
	if unitPrice < 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("unitPrice",
			fmt.Errorf("%f is negative", unitPrice))
	}
	if quantity <= 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}

	return Line{
		menuItemID: menuItemID,
		name:       name,
		unitPrice:  unitPrice,
		quantity:   quantity,
	}, nil
}

// MenuItemID returns the referenced menu item identifier.
func (l Line) MenuItemID() kernel.UUID {
	return l.menuItemID
}

// Name returns the item name captured when the line was added.
func (l Line) Name() string {
	return l.name
}

// UnitPrice returns the price snapshot taken when the line was added.
func (l Line) UnitPrice() float64 {
	return l.unitPrice
}

// Quantity returns the ordered quantity.
func (l Line) Quantity() int {
	return l.quantity
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() float64 {
	return l.unitPrice * float64(l.quantity)
}
