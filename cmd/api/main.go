package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowblog/internal/config"
	"flowblog/internal/handler"
	"flowblog/internal/middleware"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service"
	"flowblog/internal/service/auth"
	"flowblog/internal/service/search"
)

const sessionCleanupInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.JWTSecret == "" {
		zl.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = config.NewRedisClient(cfg)
		if err != nil {
			zl.Warn("redis unavailable, caching and view debounce disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var minioClient *minio.Client
	if cfg.MinIOEndpoint != "" {
		minioClient, err = config.NewMinIOClient(cfg)
		if err != nil {
			zl.Warn("minio unavailable, view exports disabled", zap.Error(err))
			minioClient = nil
		}
	}

	var engine search.Engine
	if cfg.MeiliURL != "" {
		meili := search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, zl.Named("meilisearch"))
		defer meili.Close()
		engine = meili
	}

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, redisClient, minioClient, engine, cfg, zl)
	if err != nil {
		zl.Fatal("failed to build services", zap.Error(err))
	}

	if err := services.Moderation.Initialize(ctx); err != nil {
		zl.Fatal("failed to load moderation word list", zap.Error(err))
	}

	go cleanupSessions(ctx, services.Auth, zl)

	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestInfo())

	setupRoutes(app, handlers, services.Auth)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}

func cleanupSessions(ctx context.Context, authService auth.Service, zl *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.CleanupSessions(ctx)
			if err != nil {
				zl.Warn("session cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Info("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)
	authRoutes.Post("/logout", h.Auth.Logout)
	authRoutes.Post("/forgot-password", h.Auth.ForgotPassword)
	authRoutes.Post("/reset-password", h.Auth.ResetPassword)
	authRoutes.Get("/verify-email", h.Auth.VerifyEmail)
	authRoutes.Post("/resend-verification", h.Auth.ResendVerificationEmail)

	public := v1.Group("/public", middleware.OptionalAuth(authService))
	public.Get("/posts", h.Post.List)
	public.Get("/posts/search", h.Post.Search)
	public.Get("/posts/:slug", h.Post.GetBySlug)
	public.Get("/posts/:postId/comments", h.Comment.List)
	public.Get("/posts/:postId/comments/tree", h.Comment.Tree)
	public.Get("/posts/:postId/reactions", h.Reaction.Summary)
	public.Post("/posts/:postId/views", h.View.Track)
	public.Get("/users/:username", h.User.GetPublicProfile)

	protected := v1.Group("", middleware.AuthRequired(authService))

	users := protected.Group("/users")
	users.Get("/me", h.User.GetProfile)
	users.Put("/me", h.User.UpdateProfile)
	users.Post("/assign-role", middleware.RequirePermission(middleware.PermAssignRoles), h.User.AssignRole)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RequirePermission(middleware.PermWritePosts), h.Post.Create)
	posts.Put("/:postId", h.Post.Update)
	posts.Delete("/:postId", h.Post.Delete)
	posts.Post("/:postId/publish", h.Post.Publish)
	posts.Post("/:postId/unpublish", h.Post.Unpublish)
	posts.Post("/:postId/comments", h.Comment.Create)
	posts.Post("/:postId/reactions/toggle", h.Reaction.Toggle)

	comments := protected.Group("/comments")
	comments.Put("/:commentId", h.Comment.Update)
	comments.Delete("/:commentId", h.Comment.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	admin := protected.Group("/admin", middleware.RequirePermission(middleware.PermModerateContent))
	admin.Get("/audit", h.Audit.List)

	dashboard := protected.Group("/dashboard", middleware.RequirePermission(middleware.PermViewDashboard))
	dashboard.Get("/stats", h.Dashboard.GetStats)
	dashboard.Get("/posts", h.Dashboard.ListPosts)
	dashboard.Get("/activity", h.Dashboard.RecentActivity)
	dashboard.Get("/views", h.Dashboard.AuthorViews)
	dashboard.Get("/posts/:postId/views", h.Dashboard.PostViews)
	dashboard.Get("/posts/:postId/stats", h.Dashboard.PostStats)
	dashboard.Get("/posts/:postId/activity", h.Dashboard.PostActivity)
	dashboard.Post("/posts/:postId/export", middleware.RequirePermission(middleware.PermExportViews), h.Export.ExportPostViews)
}
