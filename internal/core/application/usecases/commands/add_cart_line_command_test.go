package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

func addLineFixture(t *testing.T) (
	*MockCartUoWFactory, *MockUoW, *MockCartRepository, *MockMenuDirectory,
	commands.AddCartLineCommandHandler,
) {
	t.Helper()
	factory := new(MockCartUoWFactory)
	uow := new(MockUoW)
	cartRepo := new(MockCartRepository)
	menu := new(MockMenuDirectory)

	handler := commands.NewAddCartLineCommandHandler(factory, menu)
	return factory, uow, cartRepo, menu, handler
}

func Test_AddCartLineCommandHandler_CreatesCartOnFirstAdd(t *testing.T) {
	ctx := context.Background()
	factory, uow, cartRepo, menu, handler := addLineFixture(t)

	customerID := kernel.NewUUID()
	item := ports.MenuItem{
		ID:           kernel.NewUUID(),
		RestaurantID: kernel.NewUUID(),
		Name:         "Masala Dosa",
		Price:        100,
		IsAvailable:  true,
	}

	menu.On("Item", ctx, item.ID).Return(item, nil).Once()
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CartRepository").Return(cartRepo)
	cartRepo.On("Get", ctx, customerID).
		Return(nil, errs.NewObjectNotFoundError("customerId", customerID)).Once()
	cartRepo.On("Save", ctx, mock.AnythingOfType("*cart.Cart")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewAddCartLineCommand(customerID, item.ID, 2)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	require.Len(t, result.Lines(), 1)
	assert.Equal(t, 2, result.Lines()[0].Quantity())
	assert.Equal(t, 250.0, result.Bill().Total)
	cartRepo.AssertExpectations(t)
}

func Test_AddCartLineCommandHandler_UnavailableItem(t *testing.T) {
	ctx := context.Background()
	factory, _, _, menu, handler := addLineFixture(t)

	item := ports.MenuItem{
		ID:           kernel.NewUUID(),
		RestaurantID: kernel.NewUUID(),
		Name:         "Masala Dosa",
		Price:        100,
	}
	menu.On("Item", ctx, item.ID).Return(item, nil).Once()

	command, err := commands.NewAddCartLineCommand(kernel.NewUUID(), item.ID, 1)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, command)

	assert.ErrorIs(t, err, commands.ErrMenuItemUnavailable)
	factory.AssertNotCalled(t, "Create")
}

func Test_AddCartLineCommandHandler_ReplacesOtherRestaurantsCart(t *testing.T) {
	ctx := context.Background()
	factory, uow, cartRepo, menu, handler := addLineFixture(t)

	customerID := kernel.NewUUID()
	existing := testCartWithLine(t, customerID, kernel.NewUUID())

	item := ports.MenuItem{
		ID:           kernel.NewUUID(),
		RestaurantID: kernel.NewUUID(),
		Name:         "Paneer Roll",
		Price:        120,
		IsAvailable:  true,
	}

	menu.On("Item", ctx, item.ID).Return(item, nil).Once()
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CartRepository").Return(cartRepo)
	cartRepo.On("Get", ctx, customerID).Return(existing, nil).Once()
	cartRepo.On("Save", ctx, existing).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewAddCartLineCommand(customerID, item.ID, 1)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	require.Len(t, result.Lines(), 1)
	assert.Equal(t, "Paneer Roll", result.Lines()[0].Name())
	require.NotNil(t, result.RestaurantID())
	assert.True(t, result.RestaurantID().IsEqual(item.RestaurantID))
}

func Test_NewAddCartLineCommand_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := commands.NewAddCartLineCommand(kernel.NewUUID(), kernel.NewUUID(), 0)
	assert.Error(t, err)
}
