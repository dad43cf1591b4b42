package partner

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// VehicleType is the kind of vehicle a partner delivers with.
type VehicleType int

const (
	// VehicleUnknown is the invalid zero value.
	VehicleUnknown VehicleType = iota

	// VehicleBike is a motorbike.
	VehicleBike

	// VehicleScooter is a scooter.
	VehicleScooter

	// VehicleCycle is a bicycle.
	VehicleCycle
)

func getVehicleTypeStrings() map[VehicleType]string {
	return map[VehicleType]string{
		VehicleBike:    "bike",
		VehicleScooter: "scooter",
		VehicleCycle:   "cycle",
	}
}

// VehicleTypeFromString parses the wire representation of a vehicle type.
func VehicleTypeFromString(s string) (VehicleType, error) {
	for vt, str := range getVehicleTypeStrings() {
		if str == s {
			return vt, nil
		}
	}
	return VehicleUnknown, errs.NewValueIsInvalidErrorWithCause("vehicleType",
		fmt.Errorf("%q is not a valid vehicle type", s))
}

// Validate returns an error for VehicleUnknown or any out-of-range value.
func (v VehicleType) Validate() error {
	if _, ok := getVehicleTypeStrings()[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("vehicleType",
			fmt.Errorf("%d is not a valid vehicle type", v))
	}
	return nil
}

// String implements fmt.Stringer.
func (v VehicleType) String() string {
	if s, ok := getVehicleTypeStrings()[v]; ok {
		return s
	}
	return "unknown"
}
