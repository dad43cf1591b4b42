package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrSetPartnerAvailabilityCommandIsNotConstructed = errors.New(
	"SetPartnerAvailabilityCommand must be created via NewSetPartnerAvailabilityCommand constructor",
)

// SetPartnerAvailabilityCommand records a partner going online or offline.
type SetPartnerAvailabilityCommand struct {
	partnerID kernel.UUID
	available bool
	guard     guard.ConstructorGuard
}

// NewSetPartnerAvailabilityCommand creates a validated availability command.
func NewSetPartnerAvailabilityCommand(partnerID kernel.UUID, available bool) (SetPartnerAvailabilityCommand, error) {
	if err := partnerID.Validate(); err != nil {
		return SetPartnerAvailabilityCommand{}, err
	}

	return SetPartnerAvailabilityCommand{
		partnerID: partnerID,
		available: available,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *SetPartnerAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetPartnerAvailabilityCommandIsNotConstructed)
}

// SetPartnerAvailabilityCommandHandler toggles whether a partner can be
// claimed by dispatch.
type SetPartnerAvailabilityCommandHandler struct {
	uowFactory PartnerUoWFactory
}

// NewSetPartnerAvailabilityCommandHandler creates a handler for availability changes.
func NewSetPartnerAvailabilityCommandHandler(uowFactory PartnerUoWFactory) SetPartnerAvailabilityCommandHandler {
	return SetPartnerAvailabilityCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle persists the availability flag.
func (h SetPartnerAvailabilityCommandHandler) Handle(ctx context.Context, command SetPartnerAvailabilityCommand) error {
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

	aggregate.SetAvailability(command.available)

	if err = partnerRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
