package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/guard"
)

// PaymentMethodCashOnDelivery settles at the door; every other method goes
// through the payment gateway.
const PaymentMethodCashOnDelivery = "cod"

var (
	ErrCheckoutCommandIsNotConstructed = errors.New(
		"CheckoutCommand must be created via NewCheckoutCommand constructor",
	)

	// ErrCartIsEmpty is returned when checking out with nothing in the cart.
	ErrCartIsEmpty = errors.New("cart is empty")
)

// CheckoutCommand turns the customer's cart into an order.
type CheckoutCommand struct {
	customerID      kernel.UUID
	deliveryAddress kernel.Address
	paymentMethod   string
	guard           guard.ConstructorGuard
}

// NewCheckoutCommand creates a validated checkout command.
func NewCheckoutCommand(customerID kernel.UUID, deliveryAddress kernel.Address, paymentMethod string) (CheckoutCommand, error) {
	if err := customerID.Validate(); err != nil {
		return CheckoutCommand{}, err
	}
	if err := deliveryAddress.Validate(); err != nil {
		return CheckoutCommand{}, err
	}

	return CheckoutCommand{
		customerID:      customerID,
		deliveryAddress: deliveryAddress,
		paymentMethod:   paymentMethod,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *CheckoutCommand) Validate() error {
	return c.guard.Validate(ErrCheckoutCommandIsNotConstructed)
}

// CheckoutResult is what the customer needs to proceed after checkout.
type CheckoutResult struct {
	Order *order.Order

	// RedirectURL is where the customer completes an online payment.
	// Empty for cash on delivery.
	RedirectURL string
}

// CheckoutCommandHandler snapshots the cart into a pending order, registers
// the payment attempt for online methods, and tells the restaurant owner a
// new order arrived.
type CheckoutCommandHandler struct {
	uowFactory  UoWFactory
	restaurants ports.RestaurantDirectory
	gateway     ports.PaymentGateway
	notifier    ports.Notifier
}

// NewCheckoutCommandHandler creates a handler for checkout.
func NewCheckoutCommandHandler(
	uowFactory UoWFactory,
	restaurants ports.RestaurantDirectory,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
) CheckoutCommandHandler {
	return CheckoutCommandHandler{
		uowFactory:  uowFactory,
		restaurants: restaurants,
		gateway:     gateway,
		notifier:    notifier,
	}
}

// Handle creates the order from the cart's line and bill snapshot. Online
// payments get a gateway intent whose reference is stored on the order; the
// cart then survives until the payment is reconciled, so a failed attempt
// can be retried. Cash orders clear the cart immediately.
func (h CheckoutCommandHandler) Handle(ctx context.Context, command CheckoutCommand) (CheckoutResult, error) {
	if err := command.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CheckoutResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cartRepo := uow.CartRepository()

	aggregate, err := cartRepo.Get(ctx, command.customerID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if aggregate.IsEmpty() || aggregate.RestaurantID() == nil {
		return CheckoutResult{}, ErrCartIsEmpty
	}

	restaurant, err := h.restaurants.Locate(ctx, *aggregate.RestaurantID())
	if err != nil {
		return CheckoutResult{}, err
	}

	items := make([]order.Item, 0, len(aggregate.Lines()))
	for _, line := range aggregate.Lines() {
		item, itemErr := order.NewItem(line.MenuItemID(), line.Name(), line.UnitPrice(), line.Quantity())
		if itemErr != nil {
			return CheckoutResult{}, itemErr
		}
		items = append(items, item)
	}

	bill := aggregate.Bill()
	newOrder, err := order.NewOrder(
		kernel.NewUUID(),
		command.customerID,
		restaurant.ID,
		items,
		order.Amounts{
			Subtotal:    bill.Subtotal,
			Tax:         bill.Tax,
			DeliveryFee: bill.DeliveryFee,
			Total:       bill.Total,
		},
		command.deliveryAddress,
		command.paymentMethod,
	)
	if err != nil {
		return CheckoutResult{}, err
	}

	var redirectURL string
	if command.paymentMethod != PaymentMethodCashOnDelivery {
		intent, gatewayErr := h.gateway.Create(ctx, newOrder.ID(), bill.Total)
		if gatewayErr != nil {
			return CheckoutResult{}, fmt.Errorf("create payment: %w", gatewayErr)
		}
		if err = newOrder.SetPaymentReference(intent.Reference); err != nil {
			return CheckoutResult{}, err
		}
		redirectURL = intent.RedirectURL
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return CheckoutResult{}, err
	}

	if command.paymentMethod == PaymentMethodCashOnDelivery {
		if err = cartRepo.Delete(ctx, command.customerID); err != nil {
			return CheckoutResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return CheckoutResult{}, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		RecipientID: restaurant.OwnerID,
		Title:       "New order",
		Body:        fmt.Sprintf("Order for %.2f is waiting for confirmation", bill.Total),
		Data:        map[string]string{"order_id": newOrder.ID().String()},
	})

	return CheckoutResult{Order: newOrder, RedirectURL: redirectURL}, nil
}
