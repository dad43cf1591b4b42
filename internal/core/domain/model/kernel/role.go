package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Role identifies the kind of participant acting on the platform.
// It is a closed enum: every authorization decision matches on it
// exhaustively so an unhandled role fails validation instead of silently
// passing a string comparison.
type Role int

const (
	// RoleUnknown is the invalid zero value.
	RoleUnknown Role = iota

	// RoleCustomer places orders and tracks their delivery.
	RoleCustomer

	// RoleRestaurant prepares orders and advances them to preparing.
	RoleRestaurant

	// RoleDelivery picks orders up and drives them to the customer.
	RoleDelivery

	// RoleAdmin may perform any legal transition.
	RoleAdmin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleCustomer:   "customer",
		RoleRestaurant: "restaurant",
		RoleDelivery:   "delivery",
		RoleAdmin:      "admin",
	}
}

// RoleFromString parses the wire representation of a role, as carried in JWT
// claims. Unknown strings are rejected.
func RoleFromString(s string) (Role, error) {
	for role, str := range getRoleStrings() {
		if str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
		fmt.Errorf("%q is not a valid role", s))
}

// Validate returns an error for RoleUnknown or any out-of-range value.
func (r Role) Validate() error {
	if _, ok := getRoleStrings()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}
