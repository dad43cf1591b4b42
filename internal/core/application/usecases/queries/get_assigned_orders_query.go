package queries

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetAssignedOrdersQueryIsNotConstructed = errors.New(
	"GetAssignedOrdersQuery must be created via NewGetAssignedOrdersQuery constructor",
)

// GetAssignedOrdersQuery retrieves the in-flight orders assigned to a
// delivery partner.
type GetAssignedOrdersQuery struct {
	partnerID kernel.UUID
	guard     guard.ConstructorGuard
}

// NewGetAssignedOrdersQuery creates a query for a partner's active orders.
func NewGetAssignedOrdersQuery(partnerID kernel.UUID) (GetAssignedOrdersQuery, error) {
	if err := partnerID.Validate(); err != nil {
		return GetAssignedOrdersQuery{}, err
	}
	return GetAssignedOrdersQuery{partnerID: partnerID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAssignedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignedOrdersQueryIsNotConstructed)
}

// GetAssignedOrdersQueryHandler reads the partner's non-terminal orders,
// oldest first so the next pickup is on top.
type GetAssignedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAssignedOrdersQueryHandler creates a handler for assigned-order retrieval.
func NewGetAssignedOrdersQueryHandler(db *gorm.DB) GetAssignedOrdersQueryHandler {
	return GetAssignedOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h GetAssignedOrdersQueryHandler) Handle(ctx context.Context, query GetAssignedOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderSelectColumns+`
		FROM orders
		WHERE partner_id = ?
		  AND status NOT IN ('delivered', 'cancelled')
		ORDER BY created_at
	`, query.partnerID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]OrderResponse, 0)
	for rows.Next() {
		response, scanErr := scanOrderRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		responses = append(responses, response)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]*OrderResponse, len(responses))
	for i := range responses {
		byID[responses[i].ID] = &responses[i]
	}
	if err = loadOrderItems(ctx, h.db, byID); err != nil {
		return nil, err
	}

	return responses, nil
}
