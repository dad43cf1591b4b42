package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrPartnerAlreadyAssigned is returned when assigning a partner to an
	// order that already has one.
	ErrPartnerAlreadyAssigned = errors.New("order already has an assigned delivery partner")
)

// Amounts is the monetary breakdown copied from the cart bill at checkout.
type Amounts struct {
	Subtotal    float64
	Tax         float64
	DeliveryFee float64
	Total       float64
}

// Order is the aggregate root for a customer's purchase. It owns an
// immutable item snapshot and monetary breakdown (no back-reference into the
// live cart), a payment state mutated only by the reconciliation flow, and a
// fulfillment state advanced by restaurant, partner, dispatch, and
// cancellation actions. Orders are never deleted, only transitioned.
type Order struct {
	id               kernel.UUID
	customerID       kernel.UUID
	restaurantID     kernel.UUID
	items            []Item
	amounts          Amounts
	deliveryAddress  kernel.Address
	paymentMethod    string
	paymentReference string
	paymentStatus    PaymentStatus
	status           Status
	partnerID        *kernel.UUID
	partnerEarnings  *float64
	guard            guard.ConstructorGuard
}

// NewOrder creates an order at checkout in pending status with pending
// payment. The items slice is the snapshot copied from the cart and must be
// non-empty.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []Item,
	amounts Amounts,
	deliveryAddress kernel.Address,
	paymentMethod string,
) (*Order, error) {
	o := &Order{
		status:        StatusPending,
		paymentStatus: PaymentPending,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setAmounts(amounts),
		o.setDeliveryAddress(deliveryAddress),
		o.setPaymentMethod(paymentMethod),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an order from persistence in its stored state.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []Item,
	amounts Amounts,
	deliveryAddress kernel.Address,
	paymentMethod string,
	paymentReference string,
	paymentStatus PaymentStatus,
	status Status,
	partnerID *kernel.UUID,
	partnerEarnings *float64,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setAmounts(amounts),
		o.setDeliveryAddress(deliveryAddress),
		o.setPaymentMethod(paymentMethod),
		paymentStatus.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if partnerID != nil {
		if err := partnerID.Validate(); err != nil {
			return nil, err
		}
	}

	o.paymentReference = paymentReference
	o.paymentStatus = paymentStatus
	o.status = status
	o.partnerID = partnerID
	o.partnerEarnings = partnerEarnings
	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// CustomerID returns the ordering customer's identifier.
func (o *Order) CustomerID() kernel.UUID { return o.customerID }

// RestaurantID returns the restaurant the order was placed with.
func (o *Order) RestaurantID() kernel.UUID { return o.restaurantID }

// Items returns a copy of the immutable item snapshot.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Amounts returns the monetary breakdown recorded at checkout.
func (o *Order) Amounts() Amounts { return o.amounts }

// DeliveryAddress returns the delivery destination.
func (o *Order) DeliveryAddress() kernel.Address { return o.deliveryAddress }

// PaymentMethod returns the payment provider chosen at checkout.
func (o *Order) PaymentMethod() string { return o.paymentMethod }

// PaymentReference returns the gateway transaction reference, empty until
// payment initiation recorded one.
func (o *Order) PaymentReference() string { return o.paymentReference }

// PaymentStatus returns the reconciliation state.
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }

// Status returns the fulfillment state.
func (o *Order) Status() Status { return o.status }

// Partner returns the assigned delivery partner's identifier, nil when
// unassigned.
func (o *Order) Partner() *kernel.UUID { return o.partnerID }

// PartnerEarnings returns the partner's earnings for this order, set on
// delivery completion; nil before that.
func (o *Order) PartnerEarnings() *float64 { return o.partnerEarnings }

// IsPaid reports whether the payment has been reconciled as paid.
func (o *Order) IsPaid() bool { return o.paymentStatus == PaymentPaid }

// SetPaymentReference records the gateway transaction reference created at
// payment initiation.
func (o *Order) SetPaymentReference(reference string) error {
	if reference == "" {
		return errs.NewValueIsRequiredError("paymentReference")
	}
	o.paymentReference = reference
	return nil
}

// MarkPaid records a confirmed gateway success and confirms the order.
// Callers must check IsPaid first: the reconciliation flow treats a repeat
// confirmation as a no-op success before ever reaching this method.
func (o *Order) MarkPaid() error {
	if o.paymentStatus == PaymentPaid {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus",
			errors.New("order is already paid"))
	}
	if o.status != StatusPending {
		if err := o.status.CanTransitionTo(StatusConfirmed); err != nil {
			return err
		}
	}

	o.paymentStatus = PaymentPaid
	o.status = StatusConfirmed
	return nil
}

// MarkPaymentFailed records a provider-reported failure. The order stays in
// its current fulfillment state so the customer may retry payment.
func (o *Order) MarkPaymentFailed() {
	if o.paymentStatus != PaymentPaid {
		o.paymentStatus = PaymentFailed
	}
}

// TransitionTo advances the fulfillment state. Transitions out of terminal
// states and skips in the chain are rejected with ErrStateConflict.
func (o *Order) TransitionTo(next Status) error {
	if err := o.status.CanTransitionTo(next); err != nil {
		return err
	}
	o.status = next
	return nil
}

// AssignPartner records a successful dispatch claim. The order must not have
// a partner yet and must not be terminal; a pending order is confirmed as a
// side effect.
func (o *Order) AssignPartner(partnerID kernel.UUID) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}
	if o.partnerID != nil {
		return ErrPartnerAlreadyAssigned
	}
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrStateConflict, o.status)
	}

	if o.status == StatusPending {
		o.status = StatusConfirmed
	}
	o.partnerID = &partnerID
	return nil
}

// RecordPartnerEarnings stores the partner's payout for this order, taken
// from the delivery fee on completion.
func (o *Order) RecordPartnerEarnings(amount float64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("earnings",
			fmt.Errorf("%f is negative", amount))
	}
	o.partnerEarnings = &amount
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.customerID = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setAmounts(amounts Amounts) error {
	if amounts.Total < 0 || amounts.Subtotal < 0 {
		return errs.NewValueIsInvalidError("amounts")
	}
	o.amounts = amounts
	return nil
}

func (o *Order) setDeliveryAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setPaymentMethod(method string) error {
	if method == "" {
		return errs.NewValueIsRequiredError("paymentMethod")
	}
	o.paymentMethod = method
	return nil
}
