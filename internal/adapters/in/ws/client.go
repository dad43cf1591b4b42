package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	adapterhttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024
	sendBufferSize = 16
)

type inboundMessage struct {
	Type      string  `json:"type"`
	OrderID   string  `json:"orderId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client is one websocket connection with its authenticated identity.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity adapterhttp.Identity
	updater  LocationUpdater
	send     chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, identity adapterhttp.Identity, updater LocationUpdater) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: identity,
		updater:  updater,
		send:     make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a message to the write pump. A client too slow to drain its
// buffer is disconnected rather than allowed to block the hub.
func (c *Client) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		c.conn.Close()
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var message inboundMessage
		if err := json.Unmarshal(raw, &message); err != nil {
			c.reject("message is not valid JSON")
			continue
		}

		switch message.Type {
		case "join_order":
			if message.OrderID == "" {
				c.reject("orderId is required")
				continue
			}
			c.hub.join(message.OrderID, c)
		case "leave_order":
			c.hub.leave(message.OrderID, c)
		case "update_location":
			c.handleLocationUpdate(ctx, message)
		default:
			c.reject("unknown message type " + message.Type)
		}
	}
}

// handleLocationUpdate persists the partner's position and fans it out to
// the rooms of the orders actually assigned to them. Senders without the
// delivery role are rejected and counted.
func (c *Client) handleLocationUpdate(ctx context.Context, message inboundMessage) {
	if c.identity.Role != kernel.RoleDelivery {
		c.hub.sink.RecordLocationRejected()
		c.reject("only the assigned delivery partner may send locations")
		return
	}

	position, err := kernel.NewGeoPoint(message.Latitude, message.Longitude)
	if err != nil {
		c.hub.sink.RecordLocationRejected()
		c.reject("coordinates are out of range")
		return
	}

	cmd, err := commands.NewUpdatePartnerLocationCommand(c.identity.ID, position)
	if err != nil {
		c.reject("invalid location update")
		return
	}

	if err := c.updater.Handle(ctx, cmd); err != nil {
		c.hub.logger.Warn("location update failed",
			"partner_id", c.identity.ID.String(),
			"error", err)
		c.reject("location update failed")
	}
}

func (c *Client) reject(reason string) {
	raw, err := json.Marshal(errorMessage{Type: "error", Message: reason})
	if err != nil {
		return
	}
	c.enqueue(raw)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
