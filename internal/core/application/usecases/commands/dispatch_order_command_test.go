package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/partner"
	"fulfillment/internal/core/domain/services"
)

func dispatchFixture(t *testing.T) (
	*MockUoWFactory, *MockUoW, *MockOrderRepository, *MockPartnerRepository,
	*MockRestaurantDirectory, *MockNotifier,
	commands.DispatchOrderCommandHandler,
) {
	t.Helper()
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	restaurants := new(MockRestaurantDirectory)
	notifier := new(MockNotifier)

	handler := commands.NewDispatchOrderCommandHandler(factory, restaurants, notifier, nil)
	return factory, uow, orderRepo, partnerRepo, restaurants, notifier, handler
}

func Test_DispatchOrderCommandHandler_AssignsNearestPartner(t *testing.T) {
	ctx := context.Background()
	factory, uow, orderRepo, partnerRepo, restaurants, notifier, handler := dispatchFixture(t)

	aggregate := testOrder(t, kernel.NewUUID(), "phonepe")
	restaurant := testRestaurant(t)
	near := testPartnerAt(t, 12.9720, 77.5950)
	far := testPartnerAt(t, 12.99, 77.62)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	restaurants.On("Locate", ctx, aggregate.RestaurantID()).Return(restaurant, nil).Once()
	partnerRepo.On("GetAllAvailable", ctx).Return([]*partner.Partner{far, near}, nil).Once()
	partnerRepo.On("ClaimAvailable", ctx, near.ID()).Return(true, nil).Once()
	orderRepo.On("ClaimAssignment", ctx, aggregate).Return(true, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	command, err := commands.NewDispatchOrderCommand(aggregate.ID())
	require.NoError(t, err)

	assigned, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.True(t, assigned.IsEqual(near))
	require.NotNil(t, aggregate.Partner())
	assert.True(t, aggregate.Partner().IsEqual(near.ID()))
	partnerRepo.AssertNotCalled(t, "ClaimAvailable", ctx, far.ID())
}

func Test_DispatchOrderCommandHandler_LostClaimMovesToNextCandidate(t *testing.T) {
	ctx := context.Background()
	factory, uow, orderRepo, partnerRepo, restaurants, notifier, handler := dispatchFixture(t)

	aggregate := testOrder(t, kernel.NewUUID(), "phonepe")
	restaurant := testRestaurant(t)
	near := testPartnerAt(t, 12.9720, 77.5950)
	next := testPartnerAt(t, 12.98, 77.60)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	restaurants.On("Locate", ctx, aggregate.RestaurantID()).Return(restaurant, nil).Once()
	partnerRepo.On("GetAllAvailable", ctx).Return([]*partner.Partner{near, next}, nil).Once()
	// A concurrent dispatch claimed the nearest partner first.
	partnerRepo.On("ClaimAvailable", ctx, near.ID()).Return(false, nil).Once()
	partnerRepo.On("ClaimAvailable", ctx, next.ID()).Return(true, nil).Once()
	orderRepo.On("ClaimAssignment", ctx, aggregate).Return(true, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	command, err := commands.NewDispatchOrderCommand(aggregate.ID())
	require.NoError(t, err)

	assigned, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.True(t, assigned.IsEqual(next))
	partnerRepo.AssertExpectations(t)
}

func Test_DispatchOrderCommandHandler_LostAssignmentReleasesClaim(t *testing.T) {
	ctx := context.Background()
	factory, uow, orderRepo, partnerRepo, restaurants, notifier, handler := dispatchFixture(t)

	aggregate := testOrder(t, kernel.NewUUID(), "phonepe")
	restaurant := testRestaurant(t)
	near := testPartnerAt(t, 12.9720, 77.5950)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	restaurants.On("Locate", ctx, aggregate.RestaurantID()).Return(restaurant, nil).Once()
	partnerRepo.On("GetAllAvailable", ctx).Return([]*partner.Partner{near}, nil).Once()
	partnerRepo.On("ClaimAvailable", ctx, near.ID()).Return(true, nil).Once()
	// A concurrent dispatch assigned the order between our read and the write.
	orderRepo.On("ClaimAssignment", ctx, aggregate).Return(false, nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewDispatchOrderCommand(aggregate.ID())
	require.NoError(t, err)

	assigned, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	assert.Nil(t, assigned)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func Test_DispatchOrderCommandHandler_NoPartnerInRange(t *testing.T) {
	ctx := context.Background()
	factory, uow, orderRepo, partnerRepo, restaurants, _, handler := dispatchFixture(t)

	aggregate := testOrder(t, kernel.NewUUID(), "phonepe")
	restaurant := testRestaurant(t)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	restaurants.On("Locate", ctx, aggregate.RestaurantID()).Return(restaurant, nil).Once()
	partnerRepo.On("GetAllAvailable", ctx).Return([]*partner.Partner{}, nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewDispatchOrderCommand(aggregate.ID())
	require.NoError(t, err)

	assigned, err := handler.Handle(ctx, command)

	assert.ErrorIs(t, err, services.ErrNoPartnerAvailable)
	assert.Nil(t, assigned)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func Test_DispatchOrderCommandHandler_AlreadyAssignedIsNoOp(t *testing.T) {
	ctx := context.Background()
	factory, uow, orderRepo, partnerRepo, restaurants, _, handler := dispatchFixture(t)

	aggregate := testOrder(t, kernel.NewUUID(), "phonepe")
	require.NoError(t, aggregate.AssignPartner(kernel.NewUUID()))

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	uow.On("Rollback", ctx).Return(nil)

	command, err := commands.NewDispatchOrderCommand(aggregate.ID())
	require.NoError(t, err)

	assigned, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	assert.Nil(t, assigned)
	restaurants.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
	partnerRepo.AssertNotCalled(t, "ClaimAvailable", mock.Anything, mock.Anything)
}
