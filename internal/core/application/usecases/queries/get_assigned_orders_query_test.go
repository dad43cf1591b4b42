package queries_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetAssignedOrdersQuery_Valid(t *testing.T) {
	query, err := queries.NewGetAssignedOrdersQuery(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())
}

func TestNewGetAssignedOrdersQuery_InvalidPartnerID(t *testing.T) {
	var partnerID kernel.UUID
	_, err := queries.NewGetAssignedOrdersQuery(partnerID)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestGetAssignedOrdersQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetAssignedOrdersQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetAssignedOrdersQueryIsNotConstructed)
}
