package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Item is one position of the order's immutable cart snapshot. After
// checkout it is never re-read from the live cart or the menu.
type Item struct {
	menuItemID kernel.UUID
	name       string
	unitPrice  float64
	quantity   int
}

// NewItem creates a snapshot item.
func NewItem(menuItemID kernel.UUID, name string, unitPrice float64, quantity int) (Item, error) {
	if err := menuItemID.Validate(); err != nil {
		return Item{}, err
	}
	if name == "" {
		return Item{}, errs.NewValueIsRequiredError("name")
	}
	if unitPrice < 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("unitPrice",
			fmt.Errorf("%f is negative", unitPrice))
	}
	if quantity <= 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}

	return Item{
		menuItemID: menuItemID,
		name:       name,
		unitPrice:  unitPrice,
		quantity:   quantity,
	}, nil
}

// MenuItemID returns the snapshotted menu item identifier.
func (i Item) MenuItemID() kernel.UUID {
	return i.menuItemID
}

// Name returns the snapshotted item name.
func (i Item) Name() string {
	return i.name
}

// UnitPrice returns the snapshotted unit price.
func (i Item) UnitPrice() float64 {
	return i.unitPrice
}

// Quantity returns the ordered quantity.
func (i Item) Quantity() int {
	return i.quantity
}

// Subtotal returns unit price times quantity.
func (i Item) Subtotal() float64 {
	return i.unitPrice * float64(i.quantity)
}
