package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/middleware"
	"flowblog/internal/service/export"
)

type ExportHandler struct {
	exportService export.Service
}

func NewExportHandler(exportService export.Service) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) ExportPostViews(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	interval, err := getInterval(c)
	if err != nil {
		return err
	}

	result, err := h.exportService.ExportPostViews(c.UserContext(), middleware.GetCurrentUser(c), postID, interval)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
