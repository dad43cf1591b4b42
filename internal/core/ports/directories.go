package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Restaurant describes the slice of a restaurant profile the ordering flow
// needs: where to pick up from and who to notify about new orders.
type Restaurant struct {
	ID       kernel.UUID
	Name     string
	OwnerID  kernel.UUID
	Location kernel.GeoPoint
}

// MenuItem describes a priced menu entry.
type MenuItem struct {
	ID           kernel.UUID
	RestaurantID kernel.UUID
	Name         string
	Price        float64
	IsAvailable  bool
}

// RestaurantDirectory resolves restaurant profiles. The catalog itself is
// owned elsewhere; this port reads the projection the fulfillment flow needs.
type RestaurantDirectory interface {
	// Locate retrieves the restaurant profile by identifier.
	Locate(ctx context.Context, id kernel.UUID) (Restaurant, error)
}

// MenuDirectory resolves menu items so cart lines snapshot the current name
// and price at add time.
type MenuDirectory interface {
	// Item retrieves a menu item by identifier.
	Item(ctx context.Context, id kernel.UUID) (MenuItem, error)
}
