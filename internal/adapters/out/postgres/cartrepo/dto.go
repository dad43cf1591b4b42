// Package cartrepo provides data transfer objects and mapping functions for
// cart persistence. A cart is keyed by its customer, with one row per line.
package cartrepo

import (
	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
)

// CartDTO represents the database structure for persisting cart aggregates.
type CartDTO struct {
	CustomerID   uuid.UUID     `gorm:"type:uuid;primaryKey"`
	RestaurantID *uuid.UUID    `gorm:"type:uuid"`
	Lines        []CartLineDTO `gorm:"foreignKey:CartCustomerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for cart entities.
func (CartDTO) TableName() string {
	return "carts"
}

// CartLineDTO represents one cart line with its menu item snapshot.
type CartLineDTO struct {
	CartCustomerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	MenuItemID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string
	UnitPrice      float64
	Quantity       int
}

// TableName specifies the database table name for cart line entities.
func (CartLineDTO) TableName() string {
	return "cart_lines"
}

// fromDomain converts a cart domain aggregate to its database representation.
func fromDomain(aggregate *cart.Cart) CartDTO {
	var restaurantID *uuid.UUID
	if id := aggregate.RestaurantID(); id != nil {
		raw := id.Bytes()
		restaurantID = &raw
	}

	customerID := aggregate.CustomerID().Bytes()
	lines := make([]CartLineDTO, 0, len(aggregate.Lines()))
	for _, line := range aggregate.Lines() {
		lines = append(lines, CartLineDTO{
			CartCustomerID: customerID,
			MenuItemID:     line.MenuItemID().Bytes(),
			Name:           line.Name(),
			UnitPrice:      line.UnitPrice(),
			Quantity:       line.Quantity(),
		})
	}

	return CartDTO{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Lines:        lines,
	}
}

// toDomain converts a database DTO to a cart domain aggregate.
func toDomain(dto CartDTO) (*cart.Cart, error) {
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var restaurantID *kernel.UUID
	if dto.RestaurantID != nil {
		rID, restaurantErr := kernel.UUIDFromBytes((*dto.RestaurantID)[:])
		if restaurantErr != nil {
			return nil, restaurantErr
		}
		restaurantID = &rID
	}

	lines := make([]cart.Line, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		menuItemID, itemErr := kernel.UUIDFromBytes(lineDTO.MenuItemID[:])
		if itemErr != nil {
			return nil, itemErr
		}
		line, lineErr := cart.NewLine(menuItemID, lineDTO.Name, lineDTO.UnitPrice, lineDTO.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return cart.RestoreCart(customerID, restaurantID, lines)
}
