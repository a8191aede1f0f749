package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/middleware"
	"flowblog/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	unreadOnly := c.QueryBool("unread_only", false)

	result, err := h.notifService.List(c.UserContext(), userID, unreadOnly, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	notifID, err := parseUUIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAsRead(c.UserContext(), notifID, userID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAllAsRead(c.UserContext(), userID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
