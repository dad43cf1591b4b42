package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
)

// OrderItemResponse is one line of an order read model.
type OrderItemResponse struct {
	MenuItemID kernel.UUID
	Name       string
	UnitPrice  float64
	Quantity   int
	Subtotal   float64
}

// OrderResponse is the order read model shared by the order queries.
type OrderResponse struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	RestaurantID    kernel.UUID
	Items           []OrderItemResponse
	Subtotal        float64
	Tax             float64
	DeliveryFee     float64
	Total           float64
	Street          string
	City            string
	Latitude        float64
	Longitude       float64
	PaymentMethod   string
	PaymentStatus   string
	Status          string
	PartnerID       *kernel.UUID
	PartnerEarnings *float64
	CreatedAt       time.Time
}

const orderSelectColumns = `
	id,
	customer_id,
	restaurant_id,
	subtotal,
	tax,
	delivery_fee,
	total,
	street,
	city,
	latitude,
	longitude,
	payment_method,
	payment_status,
	status,
	partner_id,
	partner_earnings,
	created_at
`

// scanOrderRow maps one row of orderSelectColumns into the read model.
func scanOrderRow(scanner interface{ Scan(dest ...any) error }) (OrderResponse, error) {
	var response OrderResponse
	var id, customerID, restaurantID uuid.UUID
	var partnerID *uuid.UUID

	err := scanner.Scan(
		&id,
		&customerID,
		&restaurantID,
		&response.Subtotal,
		&response.Tax,
		&response.DeliveryFee,
		&response.Total,
		&response.Street,
		&response.City,
		&response.Latitude,
		&response.Longitude,
		&response.PaymentMethod,
		&response.PaymentStatus,
		&response.Status,
		&partnerID,
		&response.PartnerEarnings,
		&response.CreatedAt,
	)
	if err != nil {
		return OrderResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderResponse{}, err
	}
	if response.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return OrderResponse{}, err
	}
	if response.RestaurantID, err = kernel.UUIDFromBytes(restaurantID[:]); err != nil {
		return OrderResponse{}, err
	}
	if partnerID != nil {
		pid, idErr := kernel.UUIDFromBytes((*partnerID)[:])
		if idErr != nil {
			return OrderResponse{}, idErr
		}
		response.PartnerID = &pid
	}

	response.Items = make([]OrderItemResponse, 0)
	return response, nil
}

// loadOrderItems fills in the item snapshots for each order in place.
func loadOrderItems(ctx context.Context, db *gorm.DB, orders map[kernel.UUID]*OrderResponse) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for id := range orders {
		ids = append(ids, id.Bytes())
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			menu_item_id,
			name,
			unit_price,
			quantity
		FROM order_items
		WHERE order_id IN ?
		ORDER BY name
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID, menuItemID uuid.UUID
		var item OrderItemResponse

		if err = rows.Scan(&orderID, &menuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return err
		}

		oid, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return idErr
		}
		if item.MenuItemID, idErr = kernel.UUIDFromBytes(menuItemID[:]); idErr != nil {
			return idErr
		}
		item.Subtotal = item.UnitPrice * float64(item.Quantity)

		if parent, ok := orders[oid]; ok {
			parent.Items = append(parent.Items, item)
		}
	}
	return rows.Err()
}
