package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"flowblog/internal/middleware"
	"flowblog/internal/service/activity"
	"flowblog/internal/service/dashboard"
	"flowblog/internal/service/post"
	"flowblog/internal/service/view"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
	postService      post.Service
	viewService      view.Service
	activityService  activity.Service
}

func NewDashboardHandler(
	dashboardService dashboard.Service,
	postService post.Service,
	viewService view.Service,
	activityService activity.Service,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		postService:      postService,
		viewService:      viewService,
		activityService:  activityService,
	}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.dashboardService.GetStats(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *DashboardHandler) ListPosts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	result, err := h.postService.ListByAuthor(c.UserContext(), userID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DashboardHandler) RecentActivity(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	items, err := h.activityService.RecentForAuthor(c.UserContext(), userID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"items": items,
	})
}

func (h *DashboardHandler) AuthorViews(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	interval, err := getInterval(c)
	if err != nil {
		return err
	}

	buckets, err := h.viewService.AuthorChart(c.UserContext(), userID, interval)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"interval": interval,
		"data":     buckets,
	})
}

func (h *DashboardHandler) PostViews(c *fiber.Ctx) error {
	postID, err := h.ownedPostID(c)
	if err != nil {
		return err
	}

	interval, err := getInterval(c)
	if err != nil {
		return err
	}

	buckets, err := h.viewService.Chart(c.UserContext(), postID, interval)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post_id":  postID,
		"interval": interval,
		"data":     buckets,
	})
}

func (h *DashboardHandler) PostStats(c *fiber.Ctx) error {
	postID, err := h.ownedPostID(c)
	if err != nil {
		return err
	}

	stats, err := h.viewService.Stats(c.UserContext(), postID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *DashboardHandler) PostActivity(c *fiber.Ctx) error {
	postID, err := h.ownedPostID(c)
	if err != nil {
		return err
	}

	items, err := h.activityService.GetActivityLog(c.UserContext(), postID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post_id": postID,
		"items":   items,
	})
}

func (h *DashboardHandler) ownedPostID(c *fiber.Ctx) (uuid.UUID, error) {
	postID, err := parseUUIDParam(c, "postId", "post")
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := h.postService.GetOwned(c.UserContext(), middleware.GetCurrentUser(c), postID); err != nil {
		return uuid.Nil, err
	}

	return postID, nil
}
