package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
)

const (
	statsTTL      = 5 * time.Minute
	topPostsLimit = 5
)

type Stats struct {
	TotalPosts     int64                `json:"total_posts"`
	PublishedPosts int64                `json:"published_posts"`
	DraftPosts     int64                `json:"draft_posts"`
	TotalViews     int64                `json:"total_views"`
	TotalLikes     int64                `json:"total_likes"`
	TotalComments  int64                `json:"total_comments"`
	LastActivityAt *time.Time           `json:"last_activity_at"`
	TopPosts       []domain.PostSummary `json:"top_posts"`
}

// Invalidator drops an author's cached stats after a write that changes them.
type Invalidator interface {
	Invalidate(ctx context.Context, authorID uuid.UUID)
}

type Service interface {
	Invalidator
	GetStats(ctx context.Context, authorID uuid.UUID) (*Stats, error)
}

type service struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository
	redis        *redis.Client
	logger       *zap.Logger
}

func NewService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
	redis *redis.Client,
	log *zap.Logger,
) Service {
	return &service{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		redis:        redis,
		logger:       logger.OrNop(log),
	}
}

func cacheKey(authorID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s:stats", authorID)
}

func (s *service) GetStats(ctx context.Context, authorID uuid.UUID) (*Stats, error) {
	key := cacheKey(authorID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	counts, err := s.postRepo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	postIDs, err := s.postRepo.ListIDsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalPosts:     counts.Total,
		PublishedPosts: counts.Published,
		DraftPosts:     counts.Drafts,
		TotalViews:     counts.TotalViews,
		TopPosts:       []domain.PostSummary{},
	}

	if len(postIDs) > 0 {
		if stats.TotalLikes, err = s.reactionRepo.CountByPosts(ctx, postIDs); err != nil {
			return nil, err
		}
		if stats.TotalComments, err = s.commentRepo.CountByPosts(ctx, postIDs); err != nil {
			return nil, err
		}

		lastComment, err := s.commentRepo.LatestByPosts(ctx, postIDs)
		if err != nil {
			s.logger.Warn("latest comment lookup failed", zap.Error(err))
		}
		lastLike, err := s.reactionRepo.LatestByPosts(ctx, postIDs)
		if err != nil {
			s.logger.Warn("latest like lookup failed", zap.Error(err))
		}
		stats.LastActivityAt = latest(lastComment, lastLike)

		top, err := s.postRepo.TopByViews(ctx, authorID, topPostsLimit)
		if err != nil {
			return nil, err
		}
		if top != nil {
			stats.TopPosts = top
		}
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, key, statsJSON, statsTTL).Err()
		}
	}

	return stats, nil
}

func (s *service) Invalidate(ctx context.Context, authorID uuid.UUID) {
	if s.redis != nil {
		s.redis.Del(ctx, cacheKey(authorID))
	}
}

func latest(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b != nil && b.After(*a) {
		return b
	}
	return a
}
