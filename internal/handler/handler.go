package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Reaction     *ReactionHandler
	View         *ViewHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	Export       *ExportHandler
	Audit        *AuditHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(services.User),
		Post:         NewPostHandler(services.Post),
		Comment:      NewCommentHandler(services.Comment),
		Reaction:     NewReactionHandler(services.Reaction),
		View:         NewViewHandler(services.View),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard, services.Post, services.View, services.Activity),
		Export:       NewExportHandler(services.Export),
		Audit:        NewAuditHandler(services.Audit),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseUUIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}

func getInterval(c *fiber.Ctx) (domain.Interval, error) {
	return domain.ParseInterval(c.Query("interval", string(domain.Interval7d)))
}
