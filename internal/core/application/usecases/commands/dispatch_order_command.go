package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/partner"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/guard"
)

var ErrDispatchOrderCommandIsNotConstructed = errors.New(
	"DispatchOrderCommand must be created via NewDispatchOrderCommand constructor",
)

// DispatchOrderCommand tries to assign a delivery partner to an order.
type DispatchOrderCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewDispatchOrderCommand creates a validated dispatch command.
func NewDispatchOrderCommand(orderID kernel.UUID) (DispatchOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DispatchOrderCommand{}, err
	}

	return DispatchOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *DispatchOrderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrderCommandIsNotConstructed)
}

// DispatchOrderCommandHandler walks the proximity-ranked candidates and
// claims the first partner whose availability survives a conditional update.
// Two concurrent dispatches can rank the same partner; only one claim wins,
// the loser moves on to the next candidate.
type DispatchOrderCommandHandler struct {
	uowFactory  UoWFactory
	restaurants ports.RestaurantDirectory
	notifier    ports.Notifier
	sink        *metrics.Sink
}

// NewDispatchOrderCommandHandler creates a handler for dispatching orders.
func NewDispatchOrderCommandHandler(
	uowFactory UoWFactory,
	restaurants ports.RestaurantDirectory,
	notifier ports.Notifier,
	sink *metrics.Sink,
) DispatchOrderCommandHandler {
	return DispatchOrderCommandHandler{
		uowFactory:  uowFactory,
		restaurants: restaurants,
		notifier:    notifier,
		sink:        sink,
	}
}

// Handle assigns a partner to the order and returns them. An order that is
// already assigned or already terminal is left alone, returning nil. No
// claimable partner in range surfaces as ErrNoPartnerAvailable so the caller
// can treat it as a soft failure and let the sweep retry.
func (h DispatchOrderCommandHandler) Handle(ctx context.Context, command DispatchOrderCommand) (*partner.Partner, error) {
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
	partnerRepo := uow.PartnerRepository()

	aggregate, err := orderRepo.Get(ctx, command.orderID)
	if err != nil {
		return nil, err
	}
	if aggregate.Partner() != nil || aggregate.Status().IsTerminal() {
		return nil, nil
	}

	restaurant, err := h.restaurants.Locate(ctx, aggregate.RestaurantID())
	if err != nil {
		return nil, err
	}

	available, err := partnerRepo.GetAllAvailable(ctx)
	if err != nil {
		h.sink.RecordDispatchAttempt(metrics.DispatchResultError)
		return nil, err
	}

	candidates, err := services.NewDispatcher().Rank(restaurant.Location, available)
	if errors.Is(err, services.ErrNoPartnerAvailable) {
		h.sink.RecordDispatchAttempt(metrics.DispatchResultNoPartner)
		return nil, services.ErrNoPartnerAvailable
	}
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		won, claimErr := partnerRepo.ClaimAvailable(ctx, candidate.Partner.ID())
		if claimErr != nil {
			h.sink.RecordDispatchAttempt(metrics.DispatchResultError)
			return nil, claimErr
		}
		if !won {
			h.sink.RecordDispatchAttempt(metrics.DispatchResultContention)
			continue
		}

		if err = candidate.Partner.Claim(); err != nil {
			return nil, err
		}
		if err = aggregate.AssignPartner(candidate.Partner.ID()); err != nil {
			return nil, err
		}

		// The assignment is guarded the same way the partner claim is. If a
		// concurrent dispatch assigned this order between our Get and here,
		// the write misses and the rollback releases the claimed partner.
		won, assignErr := orderRepo.ClaimAssignment(ctx, aggregate)
		if assignErr != nil {
			h.sink.RecordDispatchAttempt(metrics.DispatchResultError)
			return nil, assignErr
		}
		if !won {
			h.sink.RecordDispatchAttempt(metrics.DispatchResultContention)
			return nil, nil
		}

		if err = uow.Commit(ctx); err != nil {
			return nil, err
		}

		h.sink.RecordDispatchAttempt(metrics.DispatchResultAssigned)
		h.notifier.Notify(ctx, ports.Notification{
			RecipientID: candidate.Partner.ID(),
			Title:       "New delivery",
			Body:        fmt.Sprintf("Pickup at %s, %.1f km away", restaurant.Name, candidate.DistanceKm),
			Data:        map[string]string{"order_id": aggregate.ID().String()},
		})

		return candidate.Partner, nil
	}

	h.sink.RecordDispatchAttempt(metrics.DispatchResultNoPartner)
	return nil, services.ErrNoPartnerAvailable
}
