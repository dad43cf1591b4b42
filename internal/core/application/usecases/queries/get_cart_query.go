// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetCartQueryIsNotConstructed = errors.New(
	"GetCartQuery must be created via NewGetCartQuery constructor",
)

// GetCartQuery retrieves the customer's cart with its computed bill.
type GetCartQuery struct {
	customerID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetCartQuery creates a query for the customer's cart.
func NewGetCartQuery(customerID kernel.UUID) (GetCartQuery, error) {
	if err := customerID.Validate(); err != nil {
		return GetCartQuery{}, err
	}
	return GetCartQuery{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCartQuery) Validate() error {
	return q.guard.Validate(ErrGetCartQueryIsNotConstructed)
}

// CartLineResponse is one line of the cart read model.
type CartLineResponse struct {
	MenuItemID kernel.UUID
	Name       string
	UnitPrice  float64
	Quantity   int
	Subtotal   float64
}

// GetCartQueryResponse is the cart read model. An absent cart renders as an
// empty cart with a zero bill rather than an error.
type GetCartQueryResponse struct {
	CustomerID   kernel.UUID
	RestaurantID *kernel.UUID
	Lines        []CartLineResponse
	Bill         cart.Bill
}

// GetCartQueryHandler reads the cart tables directly and computes the bill
// through the cart aggregate, so reads and writes can never disagree on the
// totals.
type GetCartQueryHandler struct {
	db *gorm.DB
}

// NewGetCartQueryHandler creates a handler for cart retrieval.
func NewGetCartQueryHandler(db *gorm.DB) GetCartQueryHandler {
	return GetCartQueryHandler{db: db}
}

// Handle executes the query.
func (h GetCartQueryHandler) Handle(ctx context.Context, query GetCartQuery) (GetCartQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCartQueryResponse{}, err
	}

	response := GetCartQueryResponse{
		CustomerID: query.customerID,
		Lines:      make([]CartLineResponse, 0),
	}

	var restaurantID *uuid.UUID
	err := h.db.WithContext(ctx).Raw(`
		SELECT restaurant_id
		FROM carts
		WHERE customer_id = ?
	`, query.customerID.Bytes()).Row().Scan(&restaurantID)
	if errors.Is(err, sql.ErrNoRows) {
		return response, nil
	}
	if err != nil {
		return GetCartQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			menu_item_id,
			name,
			unit_price,
			quantity
		FROM cart_lines
		WHERE cart_customer_id = ?
		ORDER BY name
	`, query.customerID.Bytes()).Rows()
	if err != nil {
		return GetCartQueryResponse{}, err
	}
	defer rows.Close()

	lines := make([]cart.Line, 0)
	for rows.Next() {
		var menuItemID uuid.UUID
		var name string
		var unitPrice float64
		var quantity int

		if err = rows.Scan(&menuItemID, &name, &unitPrice, &quantity); err != nil {
			return GetCartQueryResponse{}, err
		}

		itemID, idErr := kernel.UUIDFromBytes(menuItemID[:])
		if idErr != nil {
			return GetCartQueryResponse{}, idErr
		}
		line, lineErr := cart.NewLine(itemID, name, unitPrice, quantity)
		if lineErr != nil {
			return GetCartQueryResponse{}, lineErr
		}
		lines = append(lines, line)

		response.Lines = append(response.Lines, CartLineResponse{
			MenuItemID: itemID,
			Name:       name,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
			Subtotal:   line.Subtotal(),
		})
	}
	if err = rows.Err(); err != nil {
		return GetCartQueryResponse{}, err
	}

	var cartRestaurantID *kernel.UUID
	if restaurantID != nil {
		rid, idErr := kernel.UUIDFromBytes((*restaurantID)[:])
		if idErr != nil {
			return GetCartQueryResponse{}, idErr
		}
		cartRestaurantID = &rid
	}
	response.RestaurantID = cartRestaurantID

	aggregate, err := cart.RestoreCart(query.customerID, cartRestaurantID, lines)
	if err != nil {
		return GetCartQueryResponse{}, err
	}
	response.Bill = aggregate.Bill()

	return response, nil
}
