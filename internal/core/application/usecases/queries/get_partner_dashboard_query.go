package queries

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetPartnerDashboardQueryIsNotConstructed = errors.New(
	"GetPartnerDashboardQuery must be created via NewGetPartnerDashboardQuery constructor",
)

// GetPartnerDashboardQuery retrieves a delivery partner's working summary.
type GetPartnerDashboardQuery struct {
	partnerID kernel.UUID
	guard     guard.ConstructorGuard
}

// NewGetPartnerDashboardQuery creates a query for the partner dashboard.
func NewGetPartnerDashboardQuery(partnerID kernel.UUID) (GetPartnerDashboardQuery, error) {
	if err := partnerID.Validate(); err != nil {
		return GetPartnerDashboardQuery{}, err
	}
	return GetPartnerDashboardQuery{partnerID: partnerID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPartnerDashboardQuery) Validate() error {
	return q.guard.Validate(ErrGetPartnerDashboardQueryIsNotConstructed)
}

// GetPartnerDashboardQueryResponse summarizes a partner's profile, lifetime
// earnings, and today's work.
type GetPartnerDashboardQueryResponse struct {
	PartnerID       kernel.UUID
	IsAvailable     bool
	Rating          float64
	EarningsTotal   float64
	TotalDeliveries int
	TodayEarnings   float64
	TodayDeliveries int
	ActiveOrders    int
}

// GetPartnerDashboardQueryHandler aggregates the dashboard in two reads:
// the partner row and a same-day rollup over delivered orders.
type GetPartnerDashboardQueryHandler struct {
	db *gorm.DB
}

// NewGetPartnerDashboardQueryHandler creates a handler for the partner dashboard.
func NewGetPartnerDashboardQueryHandler(db *gorm.DB) GetPartnerDashboardQueryHandler {
	return GetPartnerDashboardQueryHandler{db: db}
}

// Handle executes the query.
func (h GetPartnerDashboardQueryHandler) Handle(ctx context.Context, query GetPartnerDashboardQuery) (GetPartnerDashboardQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPartnerDashboardQueryResponse{}, err
	}

	response := GetPartnerDashboardQueryResponse{PartnerID: query.partnerID}

	err := h.db.WithContext(ctx).Raw(`
		SELECT
			is_available,
			rating,
			earnings_total,
			total_deliveries
		FROM delivery_partners
		WHERE id = ?
	`, query.partnerID.Bytes()).Row().Scan(
		&response.IsAvailable,
		&response.Rating,
		&response.EarningsTotal,
		&response.TotalDeliveries,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetPartnerDashboardQueryResponse{}, errs.NewObjectNotFoundError("partnerId", query.partnerID)
	}
	if err != nil {
		return GetPartnerDashboardQueryResponse{}, err
	}

	err = h.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(partner_earnings), 0),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status NOT IN ('delivered', 'cancelled'))
		FROM orders
		WHERE partner_id = ?
		  AND (status != 'delivered' OR updated_at >= CURRENT_DATE)
	`, query.partnerID.Bytes()).Row().Scan(
		&response.TodayEarnings,
		&response.TodayDeliveries,
		&response.ActiveOrders,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return GetPartnerDashboardQueryResponse{}, err
	}

	return response, nil
}
