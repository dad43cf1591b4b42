// Package ports defines the contracts between the application core and
// infrastructure adapters: repositories, the unit of work, the payment
// gateway, and outbound event/notification channels.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
)

// CartRepository defines the persistence contract for cart aggregates.
// A customer has at most one cart, keyed by their identifier.
type CartRepository interface {
	// Get retrieves the customer's cart. Returns ObjectNotFoundError when
	// the customer has never carted anything.
	Get(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error)

	// Save persists the cart, creating it on first write.
	Save(ctx context.Context, aggregate *cart.Cart) error

	// Delete removes the customer's cart entirely. Deleting a missing cart
	// is not an error.
	Delete(ctx context.Context, customerID kernel.UUID) error
}
