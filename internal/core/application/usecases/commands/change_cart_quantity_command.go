package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrChangeCartQuantityCommandIsNotConstructed = errors.New(
	"ChangeCartQuantityCommand must be created via NewChangeCartQuantityCommand constructor",
)

// ChangeCartQuantityCommand sets the absolute quantity of a line in the
// customer's cart. A quantity of zero or less removes the line.
type ChangeCartQuantityCommand struct {
	customerID kernel.UUID
	menuItemID kernel.UUID
	quantity   int
	guard      guard.ConstructorGuard
}

// NewChangeCartQuantityCommand creates a validated command to change a line
// quantity. Non-positive quantities are allowed and mean removal.
func NewChangeCartQuantityCommand(customerID, menuItemID kernel.UUID, quantity int) (ChangeCartQuantityCommand, error) {
	if err := customerID.Validate(); err != nil {
		return ChangeCartQuantityCommand{}, err
	}
	if err := menuItemID.Validate(); err != nil {
		return ChangeCartQuantityCommand{}, err
	}

	return ChangeCartQuantityCommand{
		customerID: customerID,
		menuItemID: menuItemID,
		quantity:   quantity,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *ChangeCartQuantityCommand) Validate() error {
	return c.guard.Validate(ErrChangeCartQuantityCommandIsNotConstructed)
}

// ChangeCartQuantityCommandHandler applies quantity changes and removals to
// an existing cart.
type ChangeCartQuantityCommandHandler struct {
	uowFactory CartUoWFactory
}

// NewChangeCartQuantityCommandHandler creates a handler for cart quantity changes.
func NewChangeCartQuantityCommandHandler(uowFactory CartUoWFactory) ChangeCartQuantityCommandHandler {
	return ChangeCartQuantityCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle loads the cart and sets the line quantity. Returns the updated cart.
// Missing cart or missing line surface as not-found errors.
func (h ChangeCartQuantityCommandHandler) Handle(ctx context.Context, command ChangeCartQuantityCommand) (*cart.Cart, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cartRepo := uow.CartRepository()

	aggregate, err := cartRepo.Get(ctx, command.customerID)
	if err != nil {
		return nil, err
	}

	if err = aggregate.ChangeQuantity(command.menuItemID, command.quantity); err != nil {
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
