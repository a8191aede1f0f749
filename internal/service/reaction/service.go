package reaction

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/dashboard"
	"flowblog/internal/service/notification"
)

type Service interface {
	// Toggle likes the post, or removes an existing like. It returns the
	// resulting state.
	Toggle(ctx context.Context, postID, profileID uuid.UUID) (*domain.ReactionSummary, error)
	Summary(ctx context.Context, postID uuid.UUID, profileID *uuid.UUID) (*domain.ReactionSummary, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
	HasLiked(ctx context.Context, postID, profileID uuid.UUID) (bool, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Reaction, error)
	SetStatsInvalidator(stats dashboard.Invalidator)
}

type service struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	notification notification.Service
	stats        dashboard.Invalidator
	logger       *zap.Logger
}

func NewService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	notificationSvc notification.Service,
	log *zap.Logger,
) Service {
	return &service{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		notification: notificationSvc,
		logger:       logger.OrNop(log),
	}
}

func (s *service) SetStatsInvalidator(stats dashboard.Invalidator) {
	s.stats = stats
}

func (s *service) Toggle(ctx context.Context, postID, profileID uuid.UUID) (*domain.ReactionSummary, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, domain.ErrPostNotPublished
	}

	removed, err := s.reactionRepo.Delete(ctx, postID, profileID)
	if err != nil {
		return nil, err
	}

	liked := false
	if !removed {
		r := &domain.Reaction{ID: uuid.New(), PostID: postID, ProfileID: profileID}
		inserted, err := s.reactionRepo.Insert(ctx, r)
		if err != nil {
			return nil, err
		}
		liked = true

		if inserted && s.notification != nil {
			if err := s.notification.NotifyNewLike(ctx, post, profileID); err != nil {
				s.logger.Warn("failed to notify about like", zap.Stringer("post_id", postID), zap.Error(err))
			}
		}
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, post.AuthorID)
	}

	count, err := s.reactionRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &domain.ReactionSummary{PostID: postID, Count: count, Liked: liked}, nil
}

func (s *service) Summary(ctx context.Context, postID uuid.UUID, profileID *uuid.UUID) (*domain.ReactionSummary, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(profileID) {
		return nil, domain.ErrPostNotFound
	}

	count, err := s.reactionRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReactionSummary{PostID: postID, Count: count}
	if profileID != nil {
		liked, err := s.reactionRepo.Exists(ctx, postID, *profileID)
		if err != nil {
			return nil, err
		}
		summary.Liked = liked
	}
	return summary, nil
}

func (s *service) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	return s.reactionRepo.Count(ctx, postID)
}

func (s *service) HasLiked(ctx context.Context, postID, profileID uuid.UUID) (bool, error) {
	return s.reactionRepo.Exists(ctx, postID, profileID)
}

func (s *service) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Reaction, error) {
	return s.reactionRepo.ListByPost(ctx, postID)
}
