// Package partnerrepo provides data transfer objects and mapping functions
// for delivery partner persistence.
package partnerrepo

import (
	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/partner"
)

// PartnerDTO represents the database structure for persisting delivery
// partner aggregates. Availability is indexed because dispatch scans it on
// every attempt.
type PartnerDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Phone           string
	VehicleType     string
	VehicleNumber   string
	IsAvailable     bool `gorm:"index"`
	Latitude        *float64
	Longitude       *float64
	EarningsTotal   float64
	TotalDeliveries int
	Rating          float64
}

// TableName specifies the database table name for partner entities.
func (PartnerDTO) TableName() string {
	return "delivery_partners"
}

// fromDomain converts a partner domain aggregate to its database representation.
func fromDomain(aggregate *partner.Partner) PartnerDTO {
	var latitude, longitude *float64
	if location := aggregate.Location(); location != nil {
		lat := location.Latitude()
		lon := location.Longitude()
		latitude = &lat
		longitude = &lon
	}

	return PartnerDTO{
		ID:              aggregate.ID().Bytes(),
		Phone:           aggregate.Phone(),
		VehicleType:     aggregate.VehicleType().String(),
		VehicleNumber:   aggregate.VehicleNumber(),
		IsAvailable:     aggregate.IsAvailable(),
		Latitude:        latitude,
		Longitude:       longitude,
		EarningsTotal:   aggregate.EarningsTotal(),
		TotalDeliveries: aggregate.TotalDeliveries(),
		Rating:          aggregate.Rating(),
	}
}

// toDomain converts a database DTO to a partner domain aggregate.
func toDomain(dto PartnerDTO) (*partner.Partner, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	vehicleType, err := partner.VehicleTypeFromString(dto.VehicleType)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Latitude != nil && dto.Longitude != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Latitude, *dto.Longitude)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return partner.RestorePartner(
		id,
		dto.Phone,
		vehicleType,
		dto.VehicleNumber,
		dto.IsAvailable,
		location,
		dto.EarningsTotal,
		dto.TotalDeliveries,
		dto.Rating,
	)
}
