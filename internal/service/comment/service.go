package comment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/audit"
	"flowblog/internal/service/dashboard"
	"flowblog/internal/service/moderation"
	"flowblog/internal/service/notification"
)

const treeCacheTTL = 5 * time.Minute

type Service interface {
	Create(ctx context.Context, postID, profileID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, profileID, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
	// GetTree and ListByPost hide comments of drafts from everyone but
	// the post author.
	GetTree(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) ([]*domain.CommentNode, error)
	ListByPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error)
	SetAuditService(auditSvc audit.Service)
	SetStatsInvalidator(stats dashboard.Invalidator)
}

type service struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	moderation   moderation.Service
	notification notification.Service
	redis        *redis.Client
	audit        audit.Service
	stats        dashboard.Invalidator
	logger       *zap.Logger
}

func NewService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	moderationSvc moderation.Service,
	notificationSvc notification.Service,
	redis *redis.Client,
	log *zap.Logger,
) Service {
	return &service{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		moderation:   moderationSvc,
		notification: notificationSvc,
		redis:        redis,
		logger:       logger.OrNop(log),
	}
}

func (s *service) SetAuditService(auditSvc audit.Service) {
	s.audit = auditSvc
}

func (s *service) SetStatsInvalidator(stats dashboard.Invalidator) {
	s.stats = stats
}

func treeCacheKey(postID uuid.UUID) string {
	return fmt.Sprintf("comments:%s:tree", postID)
}

func (s *service) Create(ctx context.Context, postID, profileID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, domain.ErrPostNotPublished
	}

	if err := s.checkText(input.Text); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *input.ParentID)
		if errors.Is(err, domain.ErrCommentNotFound) {
			return nil, domain.ErrInvalidParent
		}
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, domain.ErrInvalidParent
		}
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		ProfileID: profileID,
		ParentID:  input.ParentID,
		Text:      input.Text,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, postID)
	s.invalidateStats(ctx, post.AuthorID)

	if s.notification != nil {
		if err := s.notification.NotifyNewComment(ctx, post, comment); err != nil {
			s.logger.Warn("failed to notify about comment", zap.Stringer("comment_id", comment.ID), zap.Error(err))
		}
	}

	return comment, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, profileID, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.ProfileID != profileID {
		return nil, domain.ErrForbidden
	}

	if err := s.checkText(input.Text); err != nil {
		return nil, err
	}

	comment.Text = input.Text

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, comment.PostID)

	return comment, nil
}

// Delete allows the commenter, the post author and admins.
func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	if comment.ProfileID != actor.ID && !actor.IsAdmin() && post.AuthorID != actor.ID {
		return domain.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, comment.PostID)
	s.invalidateStats(ctx, post.AuthorID)

	if comment.ProfileID != actor.ID && s.audit != nil {
		s.audit.Record(ctx, domain.CreateAuditLogInput{
			ActorID:    actor.ID,
			Action:     domain.AuditCommentRemoved,
			EntityType: domain.AuditEntityComment,
			EntityID:   comment.ID,
			OldValue:   map[string]any{"post_id": comment.PostID, "profile_id": comment.ProfileID, "text": comment.Text},
		})
	}

	return nil
}

func (s *service) GetTree(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) ([]*domain.CommentNode, error) {
	if err := s.ensureVisible(ctx, postID, viewerID); err != nil {
		return nil, err
	}

	cacheKey := treeCacheKey(postID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var tree []*domain.CommentNode
			if json.Unmarshal([]byte(cached), &tree) == nil {
				return tree, nil
			}
		}
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	tree, orphans := BuildTreeWithOrphans(comments)
	if len(orphans) > 0 {
		orphanIDs := make([]string, 0, len(orphans))
		for _, o := range orphans {
			orphanIDs = append(orphanIDs, o.ID.String())
		}
		s.logger.Debug("dropped orphan comments",
			zap.Stringer("post_id", postID),
			zap.Strings("comment_ids", orphanIDs),
		)
	}

	if s.redis != nil {
		if treeJSON, err := json.Marshal(tree); err == nil {
			_ = s.redis.Set(ctx, cacheKey, treeJSON, treeCacheTTL).Err()
		}
	}

	return tree, nil
}

func (s *service) ListByPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	if err := s.ensureVisible(ctx, postID, viewerID); err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}

	params.Validate()

	comments, total, err := s.commentRepo.ListByPostPaginated(ctx, postID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}

	return domain.NewPaginatedResponse(comments, params.Page, params.PageSize, total), nil
}

func (s *service) ensureVisible(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.VisibleTo(viewerID) {
		return domain.ErrPostNotFound
	}
	return nil
}

func (s *service) checkText(text string) error {
	if s.moderation == nil {
		return nil
	}
	clean, err := s.moderation.Check(text)
	if err != nil {
		return err
	}
	if !clean {
		return domain.ErrProfaneContent
	}
	return nil
}

func (s *service) invalidateStats(ctx context.Context, authorID uuid.UUID) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, authorID)
	}
}

func (s *service) invalidate(ctx context.Context, postID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, treeCacheKey(postID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate comment tree", zap.Stringer("post_id", postID), zap.Error(err))
	}
}
