package queries_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery_Valid(t *testing.T) {
	viewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	query, err := queries.NewGetOrderQuery(kernel.NewUUID(), viewer)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
}

func TestNewGetOrderQuery_InvalidOrderID(t *testing.T) {
	viewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	var orderID kernel.UUID
	_, err := queries.NewGetOrderQuery(orderID, viewer)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewGetOrderQuery_InvalidViewer(t *testing.T) {
	t.Run("zero viewer id", func(t *testing.T) {
		viewer := queries.Viewer{Role: kernel.RoleCustomer}
		_, err := queries.NewGetOrderQuery(kernel.NewUUID(), viewer)
		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("unknown role", func(t *testing.T) {
		viewer := queries.Viewer{ID: kernel.NewUUID()}
		_, err := queries.NewGetOrderQuery(kernel.NewUUID(), viewer)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestGetOrderQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
}
