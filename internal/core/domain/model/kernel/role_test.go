package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFromString(t *testing.T) {
	t.Run("should parse known roles", func(t *testing.T) {
		tests := map[string]kernel.Role{
			"customer":   kernel.RoleCustomer,
			"restaurant": kernel.RoleRestaurant,
			"delivery":   kernel.RoleDelivery,
			"admin":      kernel.RoleAdmin,
		}

		for input, want := range tests {
			role, err := kernel.RoleFromString(input)

			require.NoError(t, err, "input: %s", input)
			assert.Equal(t, want, role)
			assert.Equal(t, input, role.String())
		}
	})

	t.Run("should reject unknown strings", func(t *testing.T) {
		for _, input := range []string{"", "Customer", "courier", "superadmin"} {
			role, err := kernel.RoleFromString(input)

			assert.Error(t, err, "input: %s", input)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Equal(t, kernel.RoleUnknown, role)
		}
	})
}

func TestRole_Validate(t *testing.T) {
	t.Run("should accept all declared roles", func(t *testing.T) {
		roles := []kernel.Role{
			kernel.RoleCustomer,
			kernel.RoleRestaurant,
			kernel.RoleDelivery,
			kernel.RoleAdmin,
		}

		for _, role := range roles {
			assert.NoError(t, role.Validate())
		}
	})

	t.Run("should reject the zero value", func(t *testing.T) {
		assert.Error(t, kernel.RoleUnknown.Validate())
	})

	t.Run("should reject out of range values", func(t *testing.T) {
		assert.Error(t, kernel.Role(99).Validate())
	})
}

func TestRole_String(t *testing.T) {
	t.Run("should render unknown for invalid values", func(t *testing.T) {
		assert.Equal(t, "unknown", kernel.RoleUnknown.String())
		assert.Equal(t, "unknown", kernel.Role(99).String())
	})
}
