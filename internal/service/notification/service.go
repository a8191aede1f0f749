package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/email"
)

const excerptRunes = 140

type Service interface {
	Create(ctx context.Context, notif *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	NotifyNewComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error
	NotifyNewLike(ctx context.Context, post *domain.Post, likerID uuid.UUID) error
}

type service struct {
	notifRepo   repository.NotificationRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	emailSvc    email.Service
	logger      *zap.Logger
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	emailSvc email.Service,
	log *zap.Logger,
) Service {
	return &service{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		emailSvc:    emailSvc,
		logger:      logger.OrNop(log),
	}
}

func (s *service) Create(ctx context.Context, notif *domain.Notification) error {
	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	return s.notifRepo.Create(ctx, notif)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// NotifyNewComment tells the post author about a comment and, for replies,
// the author of the parent comment. The commenter is never notified.
func (s *service) NotifyNewComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error {
	actor, err := s.userRepo.GetByID(ctx, comment.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to get commenter: %w", err)
	}

	data, _ := json.Marshal(map[string]string{
		"post_id":    post.ID.String(),
		"post_slug":  post.Slug,
		"comment_id": comment.ID.String(),
	})
	excerpt := truncate(comment.Text, excerptRunes)

	if post.AuthorID != actor.ID {
		notif := &domain.Notification{
			ID:      uuid.New(),
			UserID:  post.AuthorID,
			Type:    domain.NotifNewComment,
			Title:   "New comment",
			Message: fmt.Sprintf("%s commented on %q", actor.FullName, post.Title),
			Data:    json.RawMessage(data),
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		s.mailAsync(post.AuthorID, func(ctx context.Context, to *domain.User) error {
			return s.emailSvc.SendNewCommentEmail(ctx, to.Email, to.FullName, actor.FullName, post.Title, post.Slug, excerpt)
		})
	}

	if comment.ParentID == nil {
		return nil
	}

	parent, err := s.commentRepo.GetByID(ctx, *comment.ParentID)
	if errors.Is(err, domain.ErrCommentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get parent comment: %w", err)
	}
	if parent.ProfileID == actor.ID || parent.ProfileID == post.AuthorID {
		return nil
	}

	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  parent.ProfileID,
		Type:    domain.NotifCommentReply,
		Title:   "New reply",
		Message: fmt.Sprintf("%s replied to your comment on %q", actor.FullName, post.Title),
		Data:    json.RawMessage(data),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.mailAsync(parent.ProfileID, func(ctx context.Context, to *domain.User) error {
		return s.emailSvc.SendCommentReplyEmail(ctx, to.Email, to.FullName, actor.FullName, post.Title, post.Slug, excerpt)
	})

	return nil
}

func (s *service) NotifyNewLike(ctx context.Context, post *domain.Post, likerID uuid.UUID) error {
	if post.AuthorID == likerID {
		return nil
	}

	liker, err := s.userRepo.GetByID(ctx, likerID)
	if err != nil {
		return fmt.Errorf("failed to get liker: %w", err)
	}

	data, _ := json.Marshal(map[string]string{
		"post_id":   post.ID.String(),
		"post_slug": post.Slug,
	})

	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  post.AuthorID,
		Type:    domain.NotifNewLike,
		Title:   "New like",
		Message: fmt.Sprintf("%s liked %q", liker.FullName, post.Title),
		Data:    json.RawMessage(data),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// mailAsync looks up the recipient and sends in the background. Failures
// are logged only.
func (s *service) mailAsync(recipientID uuid.UUID, send func(ctx context.Context, to *domain.User) error) {
	if s.emailSvc == nil {
		return
	}

	go func() {
		ctx := context.Background()
		to, err := s.userRepo.GetByID(ctx, recipientID)
		if err != nil {
			s.logger.Warn("failed to load email recipient", zap.Stringer("user_id", recipientID), zap.Error(err))
			return
		}
		if to.Email == "" {
			return
		}
		if err := send(ctx, to); err != nil {
			s.logger.Warn("failed to send notification email", zap.Stringer("user_id", recipientID), zap.Error(err))
		}
	}()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
