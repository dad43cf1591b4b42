package ports

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderEventPublisher pushes real-time events to the parties watching an
// order. Implemented by the websocket hub; commands publish after their
// transaction commits so subscribers never observe uncommitted state.
type OrderEventPublisher interface {
	// PublishStatus announces a status change to the order's room.
	PublishStatus(aggregate *order.Order)

	// PublishLocation relays the assigned partner's position to the
	// order's room.
	PublishLocation(orderID kernel.UUID, position kernel.GeoPoint, at time.Time)
}
