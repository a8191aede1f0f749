package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/post"
)

type PostHandler struct {
	postService post.Service
}

func NewPostHandler(postService post.Service) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.CreatePostInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	created, err := h.postService.Create(c.UserContext(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	result, err := h.postService.ListPublished(c.UserContext(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) GetBySlug(c *fiber.Ctx) error {
	p, err := h.postService.GetBySlug(c.UserContext(), c.Params("slug"), middleware.GetOptionalUserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PostHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return middleware.BadRequest("Search query is required")
	}

	result, err := h.postService.Search(c.UserContext(), query, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	var input domain.UpdatePostInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	updated, err := h.postService.Update(c.UserContext(), middleware.GetCurrentUser(c), postID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	if err := h.postService.Delete(c.UserContext(), middleware.GetCurrentUser(c), postID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) Publish(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	published, err := h.postService.Publish(c.UserContext(), middleware.GetCurrentUser(c), postID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(published)
}

func (h *PostHandler) Unpublish(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	draft, err := h.postService.Unpublish(c.UserContext(), middleware.GetCurrentUser(c), postID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(draft)
}
