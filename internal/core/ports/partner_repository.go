package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/partner"
)

// PartnerRepository defines the persistence contract for delivery partner
// aggregates.
type PartnerRepository interface {
	// Add persists a new partner aggregate to storage.
	Add(ctx context.Context, aggregate *partner.Partner) error

	// Update persists changes to an existing partner aggregate.
	Update(ctx context.Context, aggregate *partner.Partner) error

	// Get retrieves a partner aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error)

	// GetAllAvailable retrieves every partner currently accepting deliveries.
	GetAllAvailable(ctx context.Context) ([]*partner.Partner, error)

	// ClaimAvailable flips the partner to unavailable only if they are still
	// available, in a single conditional update. Returns true when this call
	// won the claim, false when a concurrent dispatch got there first or the
	// partner went offline.
	ClaimAvailable(ctx context.Context, id kernel.UUID) (bool, error)
}
