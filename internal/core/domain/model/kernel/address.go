package kernel

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when using an Address that was not
// created via NewAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is the delivery destination recorded on an order: a human-readable
// street plus the coordinates the delivery partner navigates to. Immutable value object.
type Address struct { //nolint:recvcheck //using for validation
	street   string
	city     string
	location GeoPoint
	guard    guard.ConstructorGuard
}

// NewAddress creates an Address. Street must be non-empty and location must
// be a constructed GeoPoint; city may be empty.
func NewAddress(street, city string, location GeoPoint) (Address, error) {
	if street == "" {
		return Address{}, errs.NewValueIsRequiredError("street")
	}
	if err := location.Validate(); err != nil {
		return Address{}, err
	}

	return Address{
		street:   street,
		city:     city,
		location: location,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the Address was built through NewAddress.
func (a Address) Validate() error {
	if err := a.guard.Validate(ErrAddressIsNotConstructed); err != nil {
		return err
	}
	return errors.Join(a.location.Validate())
}

// Street returns the street line.
func (a Address) Street() string {
	return a.street
}

// City returns the city, possibly empty.
func (a Address) City() string {
	return a.city
}

// Location returns the destination coordinates.
func (a Address) Location() GeoPoint {
	return a.location
}
