package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// ClaimAssignment persists the aggregate's partner assignment only if the
	// stored order is still unassigned. Returns false when a concurrent
	// dispatch assigned the order first.
	ClaimAssignment(ctx context.Context, aggregate *order.Order) (bool, error)

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByPaymentReference retrieves the order that owns a gateway payment
	// reference. Used by payment reconciliation, where the webhook carries
	// the gateway's reference rather than our order id.
	GetByPaymentReference(ctx context.Context, reference string) (*order.Order, error)

	// GetAllByCustomer retrieves the customer's orders, newest first.
	GetAllByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error)

	// GetAllByPartner retrieves the in-flight orders assigned to a delivery
	// partner.
	GetAllByPartner(ctx context.Context, partnerID kernel.UUID) ([]*order.Order, error)

	// GetUnassignedPaid retrieves paid orders that have no delivery partner
	// yet. The dispatch sweep retries these.
	GetUnassignedPaid(ctx context.Context) ([]*order.Order, error)
}
