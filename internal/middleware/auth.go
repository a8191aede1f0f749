package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"flowblog/internal/domain"
	"flowblog/internal/service/auth"
)

const (
	UserContextKey   = "user"
	UserIDContextKey = "user_id"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return Unauthorized("Invalid authorization header format")
		}

		user, err := resolveUser(c, authService, token)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		c.Locals(UserIDContextKey, user.ID)

		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// lets anonymous requests through untouched.
func OptionalAuth(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}

		if user, err := resolveUser(c, authService, token); err == nil {
			c.Locals(UserContextKey, user)
			c.Locals(UserIDContextKey, user.ID)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func resolveUser(c *fiber.Ctx, authService auth.Service, token string) (*domain.User, error) {
	claims, err := authService.ValidateAccessToken(token)
	if err != nil {
		return nil, Unauthorized("Invalid or expired token")
	}

	user, err := authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil || user == nil {
		return nil, Unauthorized("User not found")
	}
	if !user.IsActive {
		return nil, Forbidden("Account is disabled")
	}

	return user, nil
}

func GetCurrentUser(c *fiber.Ctx) *domain.User {
	user, ok := c.Locals(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func GetCurrentUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(UserIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetOptionalUserID returns nil for anonymous requests.
func GetOptionalUserID(c *fiber.Ctx) *uuid.UUID {
	id := GetCurrentUserID(c)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id := GetCurrentUserID(c)
	if id == uuid.Nil {
		return uuid.Nil, Unauthorized("Authentication required")
	}
	return id, nil
}
