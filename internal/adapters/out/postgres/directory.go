package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RestaurantDTO is the projection of the restaurant catalog the fulfillment
// flow reads. The catalog itself is written by another service.
type RestaurantDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	OwnerID   uuid.UUID `gorm:"type:uuid;index"`
	Latitude  float64
	Longitude float64
}

// TableName specifies the database table name for restaurant entities.
func (RestaurantDTO) TableName() string {
	return "restaurants"
}

// MenuItemDTO is the priced menu entry projection.
type MenuItemDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index"`
	Name         string
	Price        float64
	IsAvailable  bool
}

// TableName specifies the database table name for menu item entities.
func (MenuItemDTO) TableName() string {
	return "menu_items"
}

// GormRestaurantDirectory implements ports.RestaurantDirectory on the shared
// connection. Directory reads never join a unit of work.
type GormRestaurantDirectory struct {
	db *gorm.DB
}

// NewGormRestaurantDirectory creates a restaurant directory.
func NewGormRestaurantDirectory(db *gorm.DB) *GormRestaurantDirectory {
	return &GormRestaurantDirectory{db: db}
}

// Locate retrieves the restaurant profile by identifier.
func (d *GormRestaurantDirectory) Locate(ctx context.Context, id kernel.UUID) (ports.Restaurant, error) {
	if err := id.Validate(); err != nil {
		return ports.Restaurant{}, err
	}

	var dto RestaurantDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Restaurant{}, errs.NewObjectNotFoundError("restaurant", id.String())
		}
		return ports.Restaurant{}, err
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.Restaurant{}, err
	}
	ownerID, err := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err != nil {
		return ports.Restaurant{}, err
	}
	location, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return ports.Restaurant{}, err
	}

	return ports.Restaurant{
		ID:       restaurantID,
		Name:     dto.Name,
		OwnerID:  ownerID,
		Location: location,
	}, nil
}

// GormMenuDirectory implements ports.MenuDirectory on the shared connection.
type GormMenuDirectory struct {
	db *gorm.DB
}

// NewGormMenuDirectory creates a menu directory.
func NewGormMenuDirectory(db *gorm.DB) *GormMenuDirectory {
	return &GormMenuDirectory{db: db}
}

// Item retrieves a menu item by identifier.
func (d *GormMenuDirectory) Item(ctx context.Context, id kernel.UUID) (ports.MenuItem, error) {
	if err := id.Validate(); err != nil {
		return ports.MenuItem{}, err
	}

	var dto MenuItemDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MenuItem{}, errs.NewObjectNotFoundError("menuItem", id.String())
		}
		return ports.MenuItem{}, err
	}

	itemID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.MenuItem{}, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return ports.MenuItem{}, err
	}

	return ports.MenuItem{
		ID:           itemID,
		RestaurantID: restaurantID,
		Name:         dto.Name,
		Price:        dto.Price,
		IsAvailable:  dto.IsAvailable,
	}, nil
}
