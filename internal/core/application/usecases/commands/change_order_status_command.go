package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)

	// ErrForbidden is returned when the actor's role or ownership does not
	// allow the requested transition.
	ErrForbidden = errors.New("actor is not allowed to perform this transition")
)

// Actor identifies who is requesting the transition.
type Actor struct {
	ID   kernel.UUID
	Role kernel.Role
}

// ChangeOrderStatusCommand advances an order's fulfillment state on behalf
// of an actor.
type ChangeOrderStatusCommand struct {
	orderID kernel.UUID
	next    order.Status
	actor   Actor
	guard   guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a validated status transition command.
func NewChangeOrderStatusCommand(orderID kernel.UUID, next order.Status, actor Actor) (ChangeOrderStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	if err := next.Validate(); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	if err := actor.ID.Validate(); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	if err := actor.Role.Validate(); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		orderID: orderID,
		next:    next,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// ChangeOrderStatusCommandHandler applies authorized transitions and their
// side effects: broadcast, customer notification, dispatch on confirmation,
// partner payout on delivery.
type ChangeOrderStatusCommandHandler struct {
	uowFactory  UoWFactory
	restaurants ports.RestaurantDirectory
	publisher   ports.OrderEventPublisher
	notifier    ports.Notifier
	dispatcher  OrderDispatcher
}

// NewChangeOrderStatusCommandHandler creates a handler for order status changes.
func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	restaurants ports.RestaurantDirectory,
	publisher ports.OrderEventPublisher,
	notifier ports.Notifier,
	dispatcher OrderDispatcher,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory:  uowFactory,
		restaurants: restaurants,
		publisher:   publisher,
		notifier:    notifier,
		dispatcher:  dispatcher,
	}
}

// Handle authorizes and applies the transition, then runs its side effects
// after commit. Illegal transitions surface as order.ErrStateConflict,
// actors outside their lane as ErrForbidden.
func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, command ChangeOrderStatusCommand) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, command.orderID)
	if err != nil {
		return nil, err
	}

	if err = h.authorize(ctx, aggregate, command); err != nil {
		return nil, err
	}

	if err = aggregate.TransitionTo(command.next); err != nil {
		return nil, err
	}

	switch command.next {
	case order.StatusDelivered:
		if err = h.settleDelivery(ctx, uow, aggregate); err != nil {
			return nil, err
		}
	case order.StatusCancelled:
		if err = h.releasePartner(ctx, uow, aggregate); err != nil {
			return nil, err
		}
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.PublishStatus(aggregate)
	h.notifier.Notify(ctx, ports.Notification{
		RecipientID: aggregate.CustomerID(),
		Title:       "Order update",
		Body:        fmt.Sprintf("Your order is now %s", aggregate.Status()),
		Data:        map[string]string{"order_id": aggregate.ID().String()},
	})

	if command.next == order.StatusConfirmed && aggregate.Partner() == nil {
		dispatchCmd, cmdErr := NewDispatchOrderCommand(aggregate.ID())
		if cmdErr != nil {
			return nil, cmdErr
		}
		if _, err = h.dispatcher.Handle(ctx, dispatchCmd); err != nil &&
			!errors.Is(err, services.ErrNoPartnerAvailable) {
			return nil, err
		}
	}

	return aggregate, nil
}

// authorize checks both the role-to-transition matrix and that the actor
// owns their side of the order.
func (h ChangeOrderStatusCommandHandler) authorize(ctx context.Context, aggregate *order.Order, command ChangeOrderStatusCommand) error {
	if !aggregate.Status().TriggerableBy(command.next, command.actor.Role) {
		return ErrForbidden
	}

	switch command.actor.Role {
	case kernel.RoleAdmin:
		return nil

	case kernel.RoleCustomer:
		if !aggregate.CustomerID().IsEqual(command.actor.ID) {
			return ErrForbidden
		}

	case kernel.RoleRestaurant:
		restaurant, err := h.restaurants.Locate(ctx, aggregate.RestaurantID())
		if err != nil {
			return err
		}
		if !restaurant.OwnerID.IsEqual(command.actor.ID) {
			return ErrForbidden
		}

	case kernel.RoleDelivery:
		if aggregate.Partner() == nil || !aggregate.Partner().IsEqual(command.actor.ID) {
			return ErrForbidden
		}

	default:
		return ErrForbidden
	}

	return nil
}

// settleDelivery pays the partner the delivery fee and returns them to the
// available pool.
func (h ChangeOrderStatusCommandHandler) settleDelivery(ctx context.Context, uow UoW, aggregate *order.Order) error {
	partnerID := aggregate.Partner()
	if partnerID == nil {
		return nil
	}

	partnerRepo := uow.PartnerRepository()

	assigned, err := partnerRepo.Get(ctx, *partnerID)
	if err != nil {
		return err
	}

	earnings := aggregate.Amounts().DeliveryFee
	if err = aggregate.RecordPartnerEarnings(earnings); err != nil {
		return err
	}
	if err = assigned.CompleteDelivery(earnings); err != nil {
		return err
	}

	return partnerRepo.Update(ctx, assigned)
}

// releasePartner returns a cancelled order's assigned partner to the
// available pool, without a payout.
func (h ChangeOrderStatusCommandHandler) releasePartner(ctx context.Context, uow UoW, aggregate *order.Order) error {
	partnerID := aggregate.Partner()
	if partnerID == nil {
		return nil
	}

	partnerRepo := uow.PartnerRepository()

	assigned, err := partnerRepo.Get(ctx, *partnerID)
	if err != nil {
		return err
	}

	assigned.Release()
	return partnerRepo.Update(ctx, assigned)
}
