package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
)

func withUser(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role != "" {
			u := &domain.User{ID: uuid.New(), Role: role, IsActive: true}
			c.Locals(UserContextKey, u)
			c.Locals(UserIDContextKey, u.ID)
		}
		return c.Next()
	}
}

func TestRequirePermission_Dashboard(t *testing.T) {
	tests := []struct {
		role string
		code int
	}{
		{"", fiber.StatusUnauthorized},
		{"reader", fiber.StatusForbidden},
		{"author", fiber.StatusOK},
		{"admin", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run("role="+tt.role, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(nil)})
			app.Get("/", withUser(tt.role), RequirePermission(PermViewDashboard), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission("author", PermExportViews))
	assert.False(t, HasPermission("author", PermAssignRoles))
	assert.True(t, HasPermission("admin", PermAssignRoles))
	assert.False(t, HasPermission("reader", PermWritePosts))
	assert.False(t, HasPermission("ghost", PermWritePosts))
}
