package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	adapterhttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/core/application/usecases/commands"
)

// LocationUpdater persists a partner's position and publishes it to their
// in-flight orders. Satisfied by the update-location command handler.
type LocationUpdater interface {
	Handle(ctx context.Context, command commands.UpdatePartnerLocationCommand) error
}

// Handler upgrades HTTP requests to websocket connections.
type Handler struct {
	hub      *Hub
	updater  LocationUpdater
	secret   string
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler that authenticates handshakes with
// the same bearer tokens as the REST surface.
func NewHandler(hub *Hub, updater LocationUpdater, secret string) *Handler {
	return &Handler{
		hub:     hub,
		updater: updater,
		secret:  secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile clients connect from app schemes, not browser origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws. Browsers cannot set headers on websocket
// handshakes, so the token is accepted from the query string as well.
func (h *Handler) Serve(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if len(header) > len("Bearer ") && header[:len("Bearer ")] == "Bearer " {
			token = header[len("Bearer "):]
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	identity, err := adapterhttp.ParseIdentity(token, h.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(h.hub, conn, identity, h.updater)

	// The request context dies when this handler returns; the pumps outlive
	// it on the hijacked connection.
	go client.writePump()
	go client.readPump(context.Background())

	return nil
}
