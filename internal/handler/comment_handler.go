package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	var input domain.CreateCommentInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	created, err := h.commentService.Create(c.UserContext(), postID, userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	result, err := h.commentService.ListByPost(c.UserContext(), postID, middleware.GetOptionalUserID(c), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CommentHandler) Tree(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return err
	}

	tree, err := h.commentService.GetTree(c.UserContext(), postID, middleware.GetOptionalUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post_id":  postID,
		"comments": tree,
		"total":    comment.CountNodes(tree),
	})
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	commentID, err := parseUUIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	var input domain.UpdateCommentInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	updated, err := h.commentService.Update(c.UserContext(), userID, commentID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	commentID, err := parseUUIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	if err := h.commentService.Delete(c.UserContext(), middleware.GetCurrentUser(c), commentID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
