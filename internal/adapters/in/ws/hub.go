// Package ws pushes real-time order events over websockets. Connections
// join per-order rooms; status changes and the assigned partner's position
// fan out to everyone in the room.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/metrics"
)

const (
	eventOrderStatusUpdate      = "order_status_update"
	eventDeliveryLocationUpdate = "delivery_location_update"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type statusPayload struct {
	OrderID       string        `json:"orderId"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"paymentStatus"`
	PartnerID     *string       `json:"partnerId"`
	Order         orderSnapshot `json:"order"`
}

type orderItemSnapshot struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

// orderSnapshot is the order state shipped with every status event, so room
// subscribers never have to fetch the order after a transition.
type orderSnapshot struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customerId"`
	RestaurantID    string              `json:"restaurantId"`
	Items           []orderItemSnapshot `json:"items"`
	Subtotal        float64             `json:"subtotal"`
	Tax             float64             `json:"tax"`
	DeliveryFee     float64             `json:"deliveryFee"`
	Total           float64             `json:"total"`
	Street          string              `json:"street"`
	City            string              `json:"city"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	Status          string              `json:"status"`
	PartnerID       *string             `json:"partnerId"`
	PartnerEarnings *float64            `json:"partnerEarnings,omitempty"`
}

func snapshotOf(aggregate *order.Order, partnerID *string) orderSnapshot {
	items := make([]orderItemSnapshot, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, orderItemSnapshot{
			MenuItemID: item.MenuItemID().String(),
			Name:       item.Name(),
			UnitPrice:  item.UnitPrice(),
			Quantity:   item.Quantity(),
		})
	}

	amounts := aggregate.Amounts()
	address := aggregate.DeliveryAddress()

	return orderSnapshot{
		ID:              aggregate.ID().String(),
		CustomerID:      aggregate.CustomerID().String(),
		RestaurantID:    aggregate.RestaurantID().String(),
		Items:           items,
		Subtotal:        amounts.Subtotal,
		Tax:             amounts.Tax,
		DeliveryFee:     amounts.DeliveryFee,
		Total:           amounts.Total,
		Street:          address.Street(),
		City:            address.City(),
		PaymentMethod:   aggregate.PaymentMethod(),
		PaymentStatus:   aggregate.PaymentStatus().String(),
		Status:          aggregate.Status().String(),
		PartnerID:       partnerID,
		PartnerEarnings: aggregate.PartnerEarnings(),
	}
}

type locationPayload struct {
	OrderID   string    `json:"orderId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks per-order rooms and implements ports.OrderEventPublisher.
// The last known partner position of each order is kept so a subscriber
// joining mid-delivery sees the partner immediately.
type Hub struct {
	mu           sync.RWMutex
	rooms        map[string]map[*Client]struct{}
	lastPosition map[string]locationPayload

	logger *slog.Logger
	sink   *metrics.Sink
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, sink *metrics.Sink) *Hub {
	return &Hub{
		rooms:        make(map[string]map[*Client]struct{}),
		lastPosition: make(map[string]locationPayload),
		logger:       logger.With("component", "ws_hub"),
		sink:         sink,
	}
}

// PublishStatus announces a status change to the order's room.
func (h *Hub) PublishStatus(aggregate *order.Order) {
	var partnerID *string
	if id := aggregate.Partner(); id != nil {
		s := id.String()
		partnerID = &s
	}

	h.broadcast(aggregate.ID().String(), envelope{
		Type: eventOrderStatusUpdate,
		Payload: statusPayload{
			OrderID:       aggregate.ID().String(),
			Status:        aggregate.Status().String(),
			PaymentStatus: aggregate.PaymentStatus().String(),
			PartnerID:     partnerID,
			Order:         snapshotOf(aggregate, partnerID),
		},
	})
}

// PublishLocation relays the partner's position to the order's room and
// remembers it for replay to late joiners.
func (h *Hub) PublishLocation(orderID kernel.UUID, position kernel.GeoPoint, at time.Time) {
	payload := locationPayload{
		OrderID:   orderID.String(),
		Latitude:  position.Latitude(),
		Longitude: position.Longitude(),
		Timestamp: at,
	}

	h.mu.Lock()
	h.lastPosition[orderID.String()] = payload
	h.mu.Unlock()

	h.broadcast(orderID.String(), envelope{
		Type:    eventDeliveryLocationUpdate,
		Payload: payload,
	})
}

func (h *Hub) join(orderID string, client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[orderID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[orderID] = room
	}
	room[client] = struct{}{}
	replay, hasPosition := h.lastPosition[orderID]
	h.mu.Unlock()

	if hasPosition {
		client.enqueue(mustMarshal(envelope{
			Type:    eventDeliveryLocationUpdate,
			Payload: replay,
		}))
	}

	h.logger.Debug("client joined room", "order_id", orderID, "user_id", client.identity.ID.String())
}

func (h *Hub) leave(orderID string, client *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[orderID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, orderID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) disconnect(client *Client) {
	h.mu.Lock()
	for orderID, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, orderID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(orderID string, message envelope) {
	raw := mustMarshal(message)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[orderID]))
	for client := range h.rooms[orderID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.enqueue(raw)
	}
}

func mustMarshal(message envelope) []byte {
	raw, err := json.Marshal(message)
	if err != nil {
		// Payload types are plain structs; marshalling cannot fail.
		panic(err)
	}
	return raw
}
