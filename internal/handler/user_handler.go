package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return middleware.Unauthorized("User not found")
	}
	return c.Status(fiber.StatusOK).JSON(currentUser)
}

func (h *UserHandler) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := h.userService.GetPublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.UpdateUserInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	updated, err := h.userService.UpdateProfile(c.UserContext(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return middleware.Unauthorized("User not found")
	}

	var input domain.AssignRoleInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if err := h.userService.AssignRole(c.UserContext(), currentUser, input); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Role assigned successfully",
	})
}
