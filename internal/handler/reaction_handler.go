package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/middleware"
	"flowblog/internal/service/reaction"
)

type ReactionHandler struct {
	reactionService reaction.Service
}

func NewReactionHandler(reactionService reaction.Service) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// Summary returns the like count, and whether the caller liked the post
// when a token was sent.
func (h *ReactionHandler) Summary(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	summary, err := h.reactionService.Summary(c.UserContext(), postID, middleware.GetOptionalUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *ReactionHandler) Toggle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	summary, err := h.reactionService.Toggle(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
