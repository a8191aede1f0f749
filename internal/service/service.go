package service

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowblog/internal/config"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/pkg/markdown"
	"flowblog/internal/repository"
	"flowblog/internal/service/activity"
	"flowblog/internal/service/audit"
	"flowblog/internal/service/auth"
	"flowblog/internal/service/comment"
	"flowblog/internal/service/dashboard"
	"flowblog/internal/service/email"
	"flowblog/internal/service/export"
	"flowblog/internal/service/moderation"
	"flowblog/internal/service/notification"
	"flowblog/internal/service/post"
	"flowblog/internal/service/reaction"
	"flowblog/internal/service/search"
	"flowblog/internal/service/user"
	"flowblog/internal/service/view"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Post         post.Service
	Comment      comment.Service
	Reaction     reaction.Service
	View         view.Service
	Activity     activity.Service
	Dashboard    dashboard.Service
	Export       export.Service
	Notification notification.Service
	Email        email.Service
	Moderation   moderation.Service
	Search       search.Service
	Audit        audit.Service
}

// NewServices wires every service. redisClient, minioClient and engine are
// optional; the services degrade when they are nil.
func NewServices(
	repos *repository.Repositories,
	redisClient *redis.Client,
	minioClient *minio.Client,
	engine search.Engine,
	cfg *config.Config,
	log *zap.Logger,
) (*Services, error) {
	log = logger.OrNop(log)

	renderer, err := markdown.NewRenderer(cfg.RenderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}

	emailService := email.NewService(cfg, log.Named("email"))
	authService := auth.NewService(repos.User, repos.Session, emailService, cfg, log.Named("auth"))
	auditService := audit.NewService(repos.AuditLog, log.Named("audit"))
	userService := user.NewService(repos.User, auditService, log.Named("user"))
	moderationService := moderation.NewService(cfg.ModerationWordlist, log.Named("moderation"))
	searchService := search.NewService(engine, repos.Post, log.Named("search"))
	notificationService := notification.NewService(repos.Notification, repos.User, repos.Comment, emailService, log.Named("notification"))

	postService := post.NewService(repos.Post, repos.User, renderer, searchService, log.Named("post"))
	commentService := comment.NewService(repos.Comment, repos.Post, moderationService, notificationService, redisClient, log.Named("comment"))
	postService.SetAuditService(auditService)
	commentService.SetAuditService(auditService)
	reactionService := reaction.NewService(repos.Reaction, repos.Post, notificationService, log.Named("reaction"))
	viewService := view.NewService(repos.View, repos.Post, redisClient, cfg.ViewDebounceWindow, log.Named("view"))
	activityService := activity.NewService(repos.Comment, repos.Reaction, repos.Post)
	dashboardService := dashboard.NewService(repos.Post, repos.Comment, repos.Reaction, redisClient, log.Named("dashboard"))
	postService.SetStatsInvalidator(dashboardService)
	commentService.SetStatsInvalidator(dashboardService)
	reactionService.SetStatsInvalidator(dashboardService)

	var store export.ObjectStore
	if minioClient != nil {
		store = minioClient
	}
	exportService := export.NewService(viewService, repos.Post, store, cfg.MinIOBucket, cfg.ExportURLExpiry, log.Named("export"))

	return &Services{
		Auth:         authService,
		User:         userService,
		Post:         postService,
		Comment:      commentService,
		Reaction:     reactionService,
		View:         viewService,
		Activity:     activityService,
		Dashboard:    dashboardService,
		Export:       exportService,
		Notification: notificationService,
		Email:        emailService,
		Moderation:   moderationService,
		Search:       searchService,
		Audit:        auditService,
	}, nil
}
