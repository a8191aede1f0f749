package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns the moderation log, optionally narrowed to one entity with
// ?entity_type=post&entity_id=<uuid>.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	entityType := c.Query("entity_type")
	if entityType == "" {
		result, err := h.auditService.List(c.UserContext(), params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(result)
	}

	switch entityType {
	case domain.AuditEntityUser, domain.AuditEntityPost, domain.AuditEntityComment:
	default:
		return middleware.BadRequest("Invalid entity type")
	}

	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		return middleware.BadRequest("Invalid entity ID")
	}

	result, err := h.auditService.ListByEntity(c.UserContext(), entityType, entityID, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
