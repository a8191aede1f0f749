package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flowblog/internal/domain"
	"flowblog/internal/repository"
)

const DefaultRecentLimit = 20

type Service interface {
	GetActivityLog(ctx context.Context, postID uuid.UUID) ([]domain.ActivityItem, error)
	RecentForAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.ActivityItem, error)
}

type service struct {
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
}

func NewService(
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
) Service {
	return &service{
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
	}
}

func (s *service) GetActivityLog(ctx context.Context, postID uuid.UUID) ([]domain.ActivityItem, error) {
	var (
		comments  []domain.Comment
		reactions []domain.Reaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if comments, err = s.commentRepo.ListByPost(gctx, postID); err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if reactions, err = s.reactionRepo.ListByPost(gctx, postID); err != nil {
			return fmt.Errorf("failed to load reactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(comments, reactions), nil
}

// RecentForAuthor returns the newest activity across all of an author's
// posts, at most limit items.
func (s *service) RecentForAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.ActivityItem, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultRecentLimit
	}

	postIDs, err := s.postRepo.ListIDsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []domain.ActivityItem{}, nil
	}

	var (
		comments  []domain.Comment
		reactions []domain.Reaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if comments, err = s.commentRepo.ListByPosts(gctx, postIDs, limit); err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if reactions, err = s.reactionRepo.ListByPosts(gctx, postIDs, limit); err != nil {
			return fmt.Errorf("failed to load reactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := Merge(comments, reactions)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
