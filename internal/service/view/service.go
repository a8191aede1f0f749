package view

import (
	"context"
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
	DefaultDebounceWindow = 30 * time.Minute
	topEntries            = 5
)

type Service interface {
	// Track records a view unless the same session viewed the post within
	// the debounce window. It reports whether a row was written.
	Track(ctx context.Context, postID uuid.UUID, userID *uuid.UUID, input domain.TrackViewInput) (bool, error)
	Chart(ctx context.Context, postID uuid.UUID, interval domain.Interval) ([]domain.ViewBucket, error)
	AuthorChart(ctx context.Context, authorID uuid.UUID, interval domain.Interval) ([]domain.ViewBucket, error)
	Stats(ctx context.Context, postID uuid.UUID) (*domain.ViewStats, error)
}

type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	viewRepo repository.ViewRepository
	postRepo repository.PostRepository
	redis    *redis.Client
	window   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(
	viewRepo repository.ViewRepository,
	postRepo repository.PostRepository,
	redis *redis.Client,
	window time.Duration,
	log *zap.Logger,
	opts ...Option,
) Service {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	s := &service{
		viewRepo: viewRepo,
		postRepo: postRepo,
		redis:    redis,
		window:   window,
		logger:   logger.OrNop(log),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func debounceKey(postID uuid.UUID, sessionID string) string {
	return fmt.Sprintf("views:%s:%s", postID, sessionID)
}

func (s *service) Track(ctx context.Context, postID uuid.UUID, userID *uuid.UUID, input domain.TrackViewInput) (bool, error) {
	if input.ReadPercentage < 0 || input.ReadPercentage > 100 {
		return false, domain.ErrInvalidReadProgress
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if !post.IsPublished() {
		return false, domain.ErrPostNotPublished
	}

	key := debounceKey(postID, input.SessionID)
	claimed := false
	if s.redis != nil {
		first, err := s.redis.SetNX(ctx, key, 1, s.window).Result()
		if err != nil {
			s.logger.Warn("view debounce unavailable", zap.Stringer("post_id", postID), zap.Error(err))
		} else if !first {
			return false, nil
		}
		claimed = first
	}

	view := &domain.ViewEvent{
		ID:             uuid.New(),
		PostID:         postID,
		UserID:         userID,
		SessionID:      input.SessionID,
		ViewTime:       input.ViewTime,
		ReadPercentage: input.ReadPercentage,
		Referrer:       input.Referrer,
		Country:        input.Country,
	}
	if err := s.viewRepo.Create(ctx, view); err != nil {
		// release the window so a retry is not swallowed
		if claimed {
			if delErr := s.redis.Del(ctx, key).Err(); delErr != nil {
				s.logger.Warn("failed to release view debounce", zap.Stringer("post_id", postID), zap.Error(delErr))
			}
		}
		return false, fmt.Errorf("failed to record view: %w", err)
	}

	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		s.logger.Warn("failed to bump view count", zap.Stringer("post_id", postID), zap.Error(err))
	}

	return true, nil
}

func (s *service) Chart(ctx context.Context, postID uuid.UUID, interval domain.Interval) ([]domain.ViewBucket, error) {
	if !interval.IsValid() {
		return nil, domain.ErrInvalidInterval
	}

	now := s.now().UTC()
	events, err := s.viewRepo.ListTimesSince(ctx, postID, now.Add(-interval.Range()))
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	return GroupByInterval(events, interval, now)
}

func (s *service) AuthorChart(ctx context.Context, authorID uuid.UUID, interval domain.Interval) ([]domain.ViewBucket, error) {
	if !interval.IsValid() {
		return nil, domain.ErrInvalidInterval
	}

	postIDs, err := s.postRepo.ListIDsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	events, err := s.viewRepo.ListTimesForPostsSince(ctx, postIDs, now.Add(-interval.Range()))
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	return GroupByInterval(events, interval, now)
}

func (s *service) Stats(ctx context.Context, postID uuid.UUID) (*domain.ViewStats, error) {
	stats, err := s.viewRepo.GetStats(ctx, postID)
	if err != nil {
		return nil, err
	}

	if stats.TopReferrers, err = s.viewRepo.TopReferrers(ctx, postID, topEntries); err != nil {
		return nil, err
	}
	if stats.TopCountries, err = s.viewRepo.TopCountries(ctx, postID, topEntries); err != nil {
		return nil, err
	}

	return stats, nil
}
