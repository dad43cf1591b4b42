package commands_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/partner"
	"fulfillment/internal/core/ports"
)

func testAddress(t *testing.T) kernel.Address {
	t.Helper()
	point, err := kernel.NewGeoPoint(12.9352, 77.6245)
	require.NoError(t, err)
	address, err := kernel.NewAddress("42 Residency Rd", "Bengaluru", point)
	require.NoError(t, err)
	return address
}

func testRestaurant(t *testing.T) ports.Restaurant {
	t.Helper()
	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	return ports.Restaurant{
		ID:       kernel.NewUUID(),
		Name:     "Veena Stores",
		OwnerID:  kernel.NewUUID(),
		Location: point,
	}
}

func testCartWithLine(t *testing.T, customerID, restaurantID kernel.UUID) *cart.Cart {
	t.Helper()
	aggregate, err := cart.NewCart(customerID)
	require.NoError(t, err)
	line, err := cart.NewLine(kernel.NewUUID(), "Masala Dosa", 100, 2)
	require.NoError(t, err)
	require.NoError(t, aggregate.AddLine(restaurantID, line))
	return aggregate
}

func testOrder(t *testing.T, customerID kernel.UUID, paymentMethod string) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Masala Dosa", 100, 2)
	require.NoError(t, err)
	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		customerID,
		kernel.NewUUID(),
		[]order.Item{item},
		order.Amounts{Subtotal: 200, Tax: 10, DeliveryFee: 40, Total: 250},
		testAddress(t),
		paymentMethod,
	)
	require.NoError(t, err)
	return aggregate
}

func testPartnerAt(t *testing.T, lat, lon float64) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(kernel.NewUUID(), "+911234567890", partner.VehicleBike, "KA01AB1234")
	require.NoError(t, err)
	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	require.NoError(t, p.UpdateLocation(point))
	return p
}
