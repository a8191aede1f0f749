package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	PermWritePosts      = "write_posts"
	PermViewDashboard   = "view_dashboard"
	PermExportViews     = "export_views"
	PermModerateContent = "moderate_content"
	PermAssignRoles     = "assign_roles"
)

var rolePermissions = map[string]map[string]bool{
	"reader": {},
	"author": {
		PermWritePosts:    true,
		PermViewDashboard: true,
		PermExportViews:   true,
	},
	"admin": {
		PermWritePosts:      true,
		PermViewDashboard:   true,
		PermExportViews:     true,
		PermModerateContent: true,
		PermAssignRoles:     true,
	},
}

func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !HasPermission(user.Role, permission) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func HasPermission(role, permission string) bool {
	return rolePermissions[role][permission]
}
