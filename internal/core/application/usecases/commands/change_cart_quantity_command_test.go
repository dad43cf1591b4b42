package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
)

func Test_ChangeCartQuantityCommandHandler_SetsAbsoluteQuantity(t *testing.T) {
	ctx := context.Background()
	factory := new(MockCartUoWFactory)
	uow := new(MockUoW)
	cartRepo := new(MockCartRepository)
	handler := commands.NewChangeCartQuantityCommandHandler(factory)

	customerID := kernel.NewUUID()
	basket := testCartWithLine(t, customerID, kernel.NewUUID())
	menuItemID := basket.Lines()[0].MenuItemID()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CartRepository").Return(cartRepo)
	cartRepo.On("Get", ctx, customerID).Return(basket, nil).Once()
	cartRepo.On("Save", ctx, basket).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewChangeCartQuantityCommand(customerID, menuItemID, 5)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Lines()[0].Quantity())
}

func Test_ChangeCartQuantityCommandHandler_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	factory := new(MockCartUoWFactory)
	uow := new(MockUoW)
	cartRepo := new(MockCartRepository)
	handler := commands.NewChangeCartQuantityCommandHandler(factory)

	customerID := kernel.NewUUID()
	basket := testCartWithLine(t, customerID, kernel.NewUUID())
	menuItemID := basket.Lines()[0].MenuItemID()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CartRepository").Return(cartRepo)
	cartRepo.On("Get", ctx, customerID).Return(basket, nil).Once()
	cartRepo.On("Save", ctx, basket).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewChangeCartQuantityCommand(customerID, menuItemID, 0)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.Nil(t, result.RestaurantID())
}
