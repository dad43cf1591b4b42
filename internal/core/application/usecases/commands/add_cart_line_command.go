package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAddCartLineCommandIsNotConstructed = errors.New(
		"AddCartLineCommand must be created via NewAddCartLineCommand constructor",
	)

	// ErrMenuItemUnavailable is returned when the requested menu item is
	// currently switched off by the restaurant.
	ErrMenuItemUnavailable = errors.New("menu item is not available")
)

// AddCartLineCommand puts a quantity of a menu item into the customer's
// cart. The item's name and price are snapshotted server side from the menu
// directory, never taken from the client.
type AddCartLineCommand struct {
	customerID kernel.UUID
	menuItemID kernel.UUID
	quantity   int
	guard      guard.ConstructorGuard
}

// NewAddCartLineCommand creates a validated command to add a cart line.
func NewAddCartLineCommand(customerID, menuItemID kernel.UUID, quantity int) (AddCartLineCommand, error) {
	if err := customerID.Validate(); err != nil {
		return AddCartLineCommand{}, err
	}
	if err := menuItemID.Validate(); err != nil {
		return AddCartLineCommand{}, err
	}
	if quantity <= 0 {
		return AddCartLineCommand{}, errs.NewValueIsInvalidError("quantity")
	}

	return AddCartLineCommand{
		customerID: customerID,
		menuItemID: menuItemID,
		quantity:   quantity,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *AddCartLineCommand) Validate() error {
	return c.guard.Validate(ErrAddCartLineCommandIsNotConstructed)
}

// AddCartLineCommandHandler resolves the menu item and merges the line into
// the customer's cart, creating the cart on first use.
type AddCartLineCommandHandler struct {
	uowFactory CartUoWFactory
	menu       ports.MenuDirectory
}

// NewAddCartLineCommandHandler creates a handler for adding cart lines.
func NewAddCartLineCommandHandler(uowFactory CartUoWFactory, menu ports.MenuDirectory) AddCartLineCommandHandler {
	return AddCartLineCommandHandler{
		uowFactory: uowFactory,
		menu:       menu,
	}
}

// Handle loads the menu item, then adds the line inside a transaction.
// A cart holding another restaurant's items is wiped by the aggregate before
// the new line lands. Returns the updated cart for the response body.
func (h AddCartLineCommandHandler) Handle(ctx context.Context, command AddCartLineCommand) (*cart.Cart, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	item, err := h.menu.Item(ctx, command.menuItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, ErrMenuItemUnavailable
	}

	line, err := cart.NewLine(item.ID, item.Name, item.Price, command.quantity)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cartRepo := uow.CartRepository()

	aggregate, err := cartRepo.Get(ctx, command.customerID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		aggregate, err = cart.NewCart(command.customerID)
	}
	if err != nil {
		return nil, err
	}

	if err = aggregate.AddLine(item.RestaurantID, line); err != nil {
		return nil, err
	}

	if err = cartRepo.Save(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
