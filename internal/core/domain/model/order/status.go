package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrStateConflict is returned when a requested status transition is not
// allowed from the order's current state. Attempts to leave a terminal state
// always fail with this error; they are rejected, never silently ignored.
var ErrStateConflict = errors.New("order status transition is not allowed")

// Status represents the fulfillment state of an order.
//
// State transitions:
//
//	pending ──> confirmed ──> preparing ──> picked_up ──> out_for_delivery ──> delivered
//	    │            │             │             │                │
//	    └────────────┴─────────────┴─────────────┴────────────────┴──> cancelled
//
// delivered and cancelled are terminal.
type Status int

const (
	// StatusUnknown is the invalid zero value.
	StatusUnknown Status = iota

	// StatusPending is the initial state created at checkout, before the
	// payment is reconciled.
	StatusPending

	// StatusConfirmed means the payment landed (or an operator confirmed
	// manually) and dispatch may run.
	StatusConfirmed

	// StatusPreparing means the restaurant accepted and is cooking.
	StatusPreparing

	// StatusPickedUp means the assigned partner collected the order.
	StatusPickedUp

	// StatusOutForDelivery means the partner is en route to the customer.
	StatusOutForDelivery

	// StatusDelivered is the successful terminal state.
	StatusDelivered

	// StatusCancelled is the aborted terminal state.
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:        "unknown",
		StatusPending:        "pending",
		StatusConfirmed:      "confirmed",
		StatusPreparing:      "preparing",
		StatusPickedUp:       "picked_up",
		StatusOutForDelivery: "out_for_delivery",
		StatusDelivered:      "delivered",
		StatusCancelled:      "cancelled",
	}
}

// StatusFromString parses the wire representation of an order status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != StatusUnknown && str == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("orderStatus",
		fmt.Errorf("%q is not a valid order status", s))
}

// Validate returns an error for StatusUnknown or any out-of-range value.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidError("orderStatus")
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("orderStatus",
			fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are accepted from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo validates the transition from s to next against the state
// machine. Cancellation is allowed from any non-terminal state; all other
// transitions follow the linear fulfillment chain.
func (s Status) CanTransitionTo(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}

	if s.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrStateConflict, s)
	}

	if next == StatusCancelled {
		return nil
	}

	allowed := map[Status]Status{
		StatusPending:        StatusConfirmed,
		StatusConfirmed:      StatusPreparing,
		StatusPreparing:      StatusPickedUp,
		StatusPickedUp:       StatusOutForDelivery,
		StatusOutForDelivery: StatusDelivered,
	}

	if allowed[s] != next {
		return fmt.Errorf("%w: %s -> %s", ErrStateConflict, s, next)
	}
	return nil
}

// TriggerableBy reports whether role may request the transition to next.
// Restaurants accept orders and cancel; delivery partners advance the
// hand-off chain on their own orders; customers may only cancel; admins may
// trigger any legal transition.
func (s Status) TriggerableBy(next Status, role kernel.Role) bool {
	switch role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleRestaurant:
		return next == StatusConfirmed || next == StatusPreparing || next == StatusCancelled
	case kernel.RoleDelivery:
		return next == StatusPickedUp || next == StatusOutForDelivery || next == StatusDelivered
	case kernel.RoleCustomer:
		return next == StatusCancelled
	case kernel.RoleUnknown:
		return false
	}
	return false
}
