package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdatePartnerLocationCommandIsNotConstructed = errors.New(
	"UpdatePartnerLocationCommand must be created via NewUpdatePartnerLocationCommand constructor",
)

// UpdatePartnerLocationCommand records a delivery partner's reported position.
type UpdatePartnerLocationCommand struct {
	partnerID kernel.UUID
	position  kernel.GeoPoint
	guard     guard.ConstructorGuard
}

// NewUpdatePartnerLocationCommand creates a validated location update command.
func NewUpdatePartnerLocationCommand(partnerID kernel.UUID, position kernel.GeoPoint) (UpdatePartnerLocationCommand, error) {
	if err := partnerID.Validate(); err != nil {
		return UpdatePartnerLocationCommand{}, err
	}
	if err := position.Validate(); err != nil {
		return UpdatePartnerLocationCommand{}, err
	}

	return UpdatePartnerLocationCommand{
		partnerID: partnerID,
		position:  position,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *UpdatePartnerLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdatePartnerLocationCommandIsNotConstructed)
}

// UpdatePartnerLocationCommandHandler persists the position and relays it
// to everyone watching the partner's in-flight orders.
type UpdatePartnerLocationCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.OrderEventPublisher
}

// NewUpdatePartnerLocationCommandHandler creates a handler for location updates.
func NewUpdatePartnerLocationCommandHandler(uowFactory UoWFactory, publisher ports.OrderEventPublisher) UpdatePartnerLocationCommandHandler {
	return UpdatePartnerLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle stores the position, then publishes it to the rooms of the
// partner's in-flight orders after commit.
func (h UpdatePartnerLocationCommandHandler) Handle(ctx context.Context, command UpdatePartnerLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	partnerRepo := uow.PartnerRepository()

	aggregate, err := partnerRepo.Get(ctx, command.partnerID)
	if err != nil {
		return err
	}
	if err = aggregate.UpdateLocation(command.position); err != nil {
		return err
	}
	if err = partnerRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	inFlight, err := uow.OrderRepository().GetAllByPartner(ctx, command.partnerID)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	now := time.Now()
	for _, watched := range inFlight {
		h.publisher.PublishLocation(watched.ID(), command.position, now)
	}

	return nil
}
