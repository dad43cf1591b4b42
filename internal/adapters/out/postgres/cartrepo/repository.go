package cartrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCartRepository creates a new GORM cart repository.
func NewGormCartRepository(db *gorm.DB, tracker aggregateTracker) *GormCartRepository {
	return &GormCartRepository{
		db:      db,
		tracker: tracker,
	}
}

// Get retrieves the customer's cart with its lines.
func (r *GormCartRepository) Get(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error) {
	if err := customerID.Validate(); err != nil {
		return nil, err
	}

	var dto CartDTO
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&dto, "customer_id = ?", customerID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cart", customerID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Save persists the cart, replacing its line set. The line rows are
// rewritten whole because line edits remove, merge, and wipe entries.
func (r *GormCartRepository) Save(ctx context.Context, aggregate *cart.Cart) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"restaurant_id"}),
		}).
		Omit("Lines").
		Create(&CartDTO{CustomerID: dto.CustomerID, RestaurantID: dto.RestaurantID}).Error
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Delete(&CartLineDTO{}, "cart_customer_id = ?", dto.CustomerID).Error
	if err != nil {
		return err
	}

	if len(dto.Lines) > 0 {
		if err = r.db.WithContext(ctx).Create(&dto.Lines).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.CustomerID(), aggregate)
	return nil
}

// Delete removes the customer's cart and lines. Deleting a missing cart is
// not an error.
func (r *GormCartRepository) Delete(ctx context.Context, customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Delete(&CartLineDTO{}, "cart_customer_id = ?", customerID.Bytes()).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Delete(&CartDTO{}, "customer_id = ?", customerID.Bytes()).Error
}
