package partner

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// defaultRating is the rating a freshly onboarded partner starts with.
const defaultRating = 5.0

var (
	// ErrPartnerIsNotConstructed is returned when using a Partner that was
	// not created via NewPartner or RestorePartner.
	ErrPartnerIsNotConstructed = errors.New("Partner must be created via NewPartner constructor")

	// ErrPartnerNotAvailable is returned when claiming a partner who is
	// already on a delivery or offline.
	ErrPartnerNotAvailable = errors.New("delivery partner is not available")
)

// Partner is the aggregate root for a delivery partner's working profile:
// vehicle, availability, last reported position, and accumulated earnings.
//
// Availability is the single contended field. The dispatch engine flips it
// true->false with a compare-and-swap against the store; Claim mirrors that
// rule for in-memory state so domain tests and the repository agree on when
// a claim is legal.
type Partner struct {
	id            kernel.UUID
	phone         string
	vehicleType   VehicleType
	vehicleNumber string
	isAvailable   bool
	location      *kernel.GeoPoint
	earningsTotal float64
	deliveries    int
	rating        float64
	guard         guard.ConstructorGuard
}

// NewPartner creates an onboarded partner: available, unrated deliveries at
// zero, default rating, no position reported yet.
func NewPartner(id kernel.UUID, phone string, vehicleType VehicleType, vehicleNumber string) (*Partner, error) {
	p := &Partner{
		isAvailable: true,
		rating:      defaultRating,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setPhone(phone),
		p.setVehicle(vehicleType, vehicleNumber),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePartner reconstructs a partner profile from persistence.
func RestorePartner(
	id kernel.UUID,
	phone string,
	vehicleType VehicleType,
	vehicleNumber string,
	isAvailable bool,
	location *kernel.GeoPoint,
	earningsTotal float64,
	deliveries int,
	rating float64,
) (*Partner, error) {
	p := &Partner{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setPhone(phone),
		p.setVehicle(vehicleType, vehicleNumber),
	); err != nil {
		return nil, err
	}

	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
	}
	if earningsTotal < 0 {
		return nil, errs.NewValueIsInvalidError("earningsTotal")
	}
	if deliveries < 0 {
		return nil, errs.NewValueIsInvalidError("totalDeliveries")
	}

	p.isAvailable = isAvailable
	p.location = location
	p.earningsTotal = earningsTotal
	p.deliveries = deliveries
	p.rating = rating
	return p, nil
}

// Validate ensures the Partner was created through a constructor.
func (p *Partner) Validate() error {
	if p == nil {
		return ErrPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrPartnerIsNotConstructed)
}

// IsEqual compares two partners by identifier.
func (p *Partner) IsEqual(other *Partner) bool {
	return other != nil && p.id.IsEqual(other.id)
}

// ID returns the partner's identifier (their platform user id).
func (p *Partner) ID() kernel.UUID { return p.id }

// Phone returns the partner's contact number.
func (p *Partner) Phone() string { return p.phone }

// VehicleType returns the partner's vehicle kind.
func (p *Partner) VehicleType() VehicleType { return p.vehicleType }

// VehicleNumber returns the registration plate.
func (p *Partner) VehicleNumber() string { return p.vehicleNumber }

// IsAvailable reports whether the partner can be claimed for a delivery.
func (p *Partner) IsAvailable() bool { return p.isAvailable }

// Location returns the last reported position, nil if never reported.
func (p *Partner) Location() *kernel.GeoPoint { return p.location }

// EarningsTotal returns accumulated delivery earnings.
func (p *Partner) EarningsTotal() float64 { return p.earningsTotal }

// TotalDeliveries returns the number of completed deliveries.
func (p *Partner) TotalDeliveries() int { return p.deliveries }

// Rating returns the partner's current rating.
func (p *Partner) Rating() float64 { return p.rating }

// SetAvailability records the partner going online or offline.
func (p *Partner) SetAvailability(available bool) {
	p.isAvailable = available
}

// Claim takes the partner for a delivery. Fails with ErrPartnerNotAvailable
// unless the partner is currently available.
func (p *Partner) Claim() error {
	if !p.isAvailable {
		return ErrPartnerNotAvailable
	}
	p.isAvailable = false
	return nil
}

// Release returns the partner to the available pool without completing a
// delivery, for example when the order is cancelled mid-flight.
func (p *Partner) Release() {
	p.isAvailable = true
}

// CompleteDelivery releases the partner and credits the payout for a
// finished delivery.
func (p *Partner) CompleteDelivery(earnings float64) error {
	if earnings < 0 {
		return errs.NewValueIsInvalidErrorWithCause("earnings",
			fmt.Errorf("%f is negative", earnings))
	}

	p.isAvailable = true
	p.earningsTotal += earnings
	p.deliveries++
	return nil
}

// UpdateLocation records the partner's latest reported position.
func (p *Partner) UpdateLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	p.location = &point
	return nil
}

func (p *Partner) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Partner) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	p.phone = phone
	return nil
}

func (p *Partner) setVehicle(vehicleType VehicleType, vehicleNumber string) error {
	if err := vehicleType.Validate(); err != nil {
		return err
	}
	if vehicleNumber == "" {
		return errs.NewValueIsRequiredError("vehicleNumber")
	}
	p.vehicleType = vehicleType
	p.vehicleNumber = vehicleNumber
	return nil
}
