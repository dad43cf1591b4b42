package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/partner"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// OrderDispatcher triggers partner assignment for an order. Satisfied by
// DispatchOrderCommandHandler.
type OrderDispatcher interface {
	Handle(ctx context.Context, command DispatchOrderCommand) (*partner.Partner, error)
}

// ConfirmPaymentCommand reconciles a gateway payment attempt with its order.
// Triggered by the gateway webhook and by the customer returning from the
// payment page, so the same reference can arrive more than once.
type ConfirmPaymentCommand struct {
	reference string
	guard     guard.ConstructorGuard
}

// NewConfirmPaymentCommand creates a validated reconciliation command.
func NewConfirmPaymentCommand(reference string) (ConfirmPaymentCommand, error) {
	if reference == "" {
		return ConfirmPaymentCommand{}, errs.NewValueIsRequiredError("reference")
	}

	return ConfirmPaymentCommand{
		reference: reference,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

// ConfirmPaymentCommandHandler settles a payment attempt against the
// gateway's authoritative status. The webhook payload is never trusted on
// its own; the handler always re-verifies with the gateway before mutating
// the order.
type ConfirmPaymentCommandHandler struct {
	uowFactory UoWFactory
	gateway    ports.PaymentGateway
	publisher  ports.OrderEventPublisher
	notifier   ports.Notifier
	dispatcher OrderDispatcher
}

// NewConfirmPaymentCommandHandler creates a handler for payment reconciliation.
func NewConfirmPaymentCommandHandler(
	uowFactory UoWFactory,
	gateway ports.PaymentGateway,
	publisher ports.OrderEventPublisher,
	notifier ports.Notifier,
	dispatcher OrderDispatcher,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		publisher:  publisher,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

// Handle reconciles the referenced order. An already paid order is a no-op
// success, so replayed webhooks cannot double-confirm. On a verified
// success the order is marked paid and confirmed, the customer's cart is
// dropped, subscribers are told, and dispatch is attempted. A verified
// failure marks the payment failed but leaves the order pending so the
// customer can retry.
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, command ConfirmPaymentCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	outcome, err := h.gateway.Verify(ctx, command.reference)
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

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.GetByPaymentReference(ctx, command.reference)
	if err != nil {
		return nil, err
	}
	if aggregate.IsPaid() {
		return aggregate, nil
	}

	switch outcome {
	case ports.PaymentOutcomeSuccess:
		if err = aggregate.MarkPaid(); err != nil {
			return nil, err
		}
	case ports.PaymentOutcomeFailed:
		aggregate.MarkPaymentFailed()
	default:
		return aggregate, nil
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if aggregate.IsPaid() {
		if err = uow.CartRepository().Delete(ctx, aggregate.CustomerID()); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if !aggregate.IsPaid() {
		return aggregate, nil
	}

	h.publisher.PublishStatus(aggregate)
	h.notifier.Notify(ctx, ports.Notification{
		RecipientID: aggregate.CustomerID(),
		Title:       "Payment received",
		Body:        "Your order is confirmed and being prepared",
		Data:        map[string]string{"order_id": aggregate.ID().String()},
	})

	dispatchCmd, err := NewDispatchOrderCommand(aggregate.ID())
	if err != nil {
		return nil, err
	}
	if _, err = h.dispatcher.Handle(ctx, dispatchCmd); err != nil &&
		!errors.Is(err, services.ErrNoPartnerAvailable) {
		return nil, err
	}

	return aggregate, nil
}
