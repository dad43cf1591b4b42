package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)

	// ErrAccessDenied is returned when the viewer is not a participant of
	// the order.
	ErrAccessDenied = errors.New("order does not belong to the viewer")
)

// Viewer identifies who is asking for the data.
type Viewer struct {
	ID   kernel.UUID
	Role kernel.Role
}

// GetOrderQuery retrieves one order on behalf of a viewer.
type GetOrderQuery struct {
	orderID kernel.UUID
	viewer  Viewer
	guard   guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order.
func NewGetOrderQuery(orderID kernel.UUID, viewer Viewer) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	if err := viewer.ID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	if err := viewer.Role.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{orderID: orderID, viewer: viewer, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// GetOrderQueryHandler reads one order and enforces that the viewer is the
// customer, the assigned partner, the restaurant's owner, or an admin.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order retrieval.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. A foreign order surfaces as ErrAccessDenied,
// a missing one as an ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT `+orderSelectColumns+`
		FROM orders
		WHERE id = ?
	`, query.orderID.Bytes()).Row()

	response, err := scanOrderRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderResponse{}, errs.NewObjectNotFoundError("orderId", query.orderID)
	}
	if err != nil {
		return OrderResponse{}, err
	}

	if err = h.authorize(ctx, &response, query.viewer); err != nil {
		return OrderResponse{}, err
	}

	orders := map[kernel.UUID]*OrderResponse{response.ID: &response}
	if err = loadOrderItems(ctx, h.db, orders); err != nil {
		return OrderResponse{}, err
	}

	return response, nil
}

func (h GetOrderQueryHandler) authorize(ctx context.Context, response *OrderResponse, viewer Viewer) error {
	switch viewer.Role {
	case kernel.RoleAdmin:
		return nil

	case kernel.RoleCustomer:
		if response.CustomerID.IsEqual(viewer.ID) {
			return nil
		}

	case kernel.RoleDelivery:
		if response.PartnerID != nil && response.PartnerID.IsEqual(viewer.ID) {
			return nil
		}

	case kernel.RoleRestaurant:
		var ownerID uuid.UUID
		err := h.db.WithContext(ctx).Raw(`
			SELECT owner_id
			FROM restaurants
			WHERE id = ?
		`, response.RestaurantID.Bytes()).Row().Scan(&ownerID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err == nil {
			owner, idErr := kernel.UUIDFromBytes(ownerID[:])
			if idErr != nil {
				return idErr
			}
			if owner.IsEqual(viewer.ID) {
				return nil
			}
		}
	}

	return ErrAccessDenied
}
