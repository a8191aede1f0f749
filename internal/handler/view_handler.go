package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/view"
)

type ViewHandler struct {
	viewService view.Service
}

func NewViewHandler(viewService view.Service) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

func (h *ViewHandler) Track(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	var input domain.TrackViewInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if input.Country == nil {
		if country := middleware.GetCountry(c); country != "" {
			input.Country = &country
		}
	}
	if input.Referrer == nil {
		if ref := c.Get(fiber.HeaderReferer); ref != "" {
			input.Referrer = &ref
		}
	}

	recorded, err := h.viewService.Track(c.UserContext(), postID, middleware.GetOptionalUserID(c), input)
	if err != nil {
		return err
	}

	status := fiber.StatusAccepted
	if recorded {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"recorded": recorded,
	})
}
