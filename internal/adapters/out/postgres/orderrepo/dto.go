// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. Statuses are stored as their string form so operational
// queries stay readable.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CustomerID       uuid.UUID      `gorm:"type:uuid;index"`
	RestaurantID     uuid.UUID      `gorm:"type:uuid;index"`
	Items            []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal         float64
	Tax              float64
	DeliveryFee      float64
	Total            float64
	Street           string
	City             string
	Latitude         float64
	Longitude        float64
	PaymentMethod    string
	PaymentReference string `gorm:"index"`
	PaymentStatus    string
	Status           string     `gorm:"index"`
	PartnerID        *uuid.UUID `gorm:"type:uuid;index"`
	PartnerEarnings  *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents one immutable item snapshot of an order.
type OrderItemDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	MenuItemID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string
	UnitPrice  float64
	Quantity   int
}

// TableName specifies the database table name for order item entities.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var partnerID *uuid.UUID
	if id := aggregate.Partner(); id != nil {
		raw := id.Bytes()
		partnerID = &raw
	}

	orderID := aggregate.ID().Bytes()
	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, OrderItemDTO{
			OrderID:    orderID,
			MenuItemID: item.MenuItemID().Bytes(),
			Name:       item.Name(),
			UnitPrice:  item.UnitPrice(),
			Quantity:   item.Quantity(),
		})
	}

	address := aggregate.DeliveryAddress()
	amounts := aggregate.Amounts()

	return OrderDTO{
		ID:               orderID,
		CustomerID:       aggregate.CustomerID().Bytes(),
		RestaurantID:     aggregate.RestaurantID().Bytes(),
		Items:            items,
		Subtotal:         amounts.Subtotal,
		Tax:              amounts.Tax,
		DeliveryFee:      amounts.DeliveryFee,
		Total:            amounts.Total,
		Street:           address.Street(),
		City:             address.City(),
		Latitude:         address.Location().Latitude(),
		Longitude:        address.Location().Longitude(),
		PaymentMethod:    aggregate.PaymentMethod(),
		PaymentReference: aggregate.PaymentReference(),
		PaymentStatus:    aggregate.PaymentStatus().String(),
		Status:           aggregate.Status().String(),
		PartnerID:        partnerID,
		PartnerEarnings:  aggregate.PartnerEarnings(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var partnerID *kernel.UUID
	if dto.PartnerID != nil {
		pID, partnerErr := kernel.UUIDFromBytes((*dto.PartnerID)[:])
		if partnerErr != nil {
			return nil, partnerErr
		}
		partnerID = &pID
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		menuItemID, itemErr := kernel.UUIDFromBytes(itemDTO.MenuItemID[:])
		if itemErr != nil {
			return nil, itemErr
		}
		item, itemErr := order.NewItem(menuItemID, itemDTO.Name, itemDTO.UnitPrice, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	point, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}
	address, err := kernel.NewAddress(dto.Street, dto.City, point)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := order.PaymentStatusFromString(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}
	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		customerID,
		restaurantID,
		items,
		order.Amounts{
			Subtotal:    dto.Subtotal,
			Tax:         dto.Tax,
			DeliveryFee: dto.DeliveryFee,
			Total:       dto.Total,
		},
		address,
		dto.PaymentMethod,
		dto.PaymentReference,
		paymentStatus,
		status,
		partnerID,
		dto.PartnerEarnings,
	)
}
