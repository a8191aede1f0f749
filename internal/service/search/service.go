package search

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
)

const DefaultLimit = 20

type Service interface {
	// Search tries the index first and falls back to Postgres ILIKE.
	Search(ctx context.Context, query string, limit int) (*Response, error)
	IndexPost(post *domain.Post)
	RemovePost(id uuid.UUID)
}

type service struct {
	engine   Engine
	postRepo repository.PostRepository
	logger   *zap.Logger
}

// NewService builds the search facade. engine may be nil.
func NewService(engine Engine, postRepo repository.PostRepository, log *zap.Logger) Service {
	return &service{engine: engine, postRepo: postRepo, logger: logger.OrNop(log)}
}

func (s *service) Search(ctx context.Context, query string, limit int) (*Response, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultLimit
	}

	if s.engine != nil && s.engine.Healthy() {
		results, total, err := s.engine.Search(query, limit)
		if err == nil {
			return &Response{Results: nonNil(results), Total: total, Query: query, Engine: "meilisearch"}, nil
		}
		s.logger.Warn("meilisearch error, falling back to postgres", zap.Error(err))
	}

	posts, err := s.postRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(posts))
	for _, p := range posts {
		results = append(results, resultFromPost(p))
	}
	return &Response{Results: results, Total: len(results), Query: query, Engine: "postgres"}, nil
}

// IndexPost indexes a published post in the background. Drafts are removed
// from the index instead.
func (s *service) IndexPost(post *domain.Post) {
	if s.engine == nil || !s.engine.Healthy() {
		return
	}
	if !post.IsPublished() {
		s.RemovePost(post.ID)
		return
	}

	doc := NewPostDocument(post)
	go func() {
		if err := s.engine.IndexPost(doc); err != nil {
			s.logger.Warn("failed to index post", zap.String("post_id", doc.ID), zap.Error(err))
		}
	}()
}

func (s *service) RemovePost(id uuid.UUID) {
	if s.engine == nil || !s.engine.Healthy() {
		return
	}
	go func() {
		if err := s.engine.DeletePost(id.String()); err != nil {
			s.logger.Warn("failed to remove post from index", zap.Stringer("post_id", id), zap.Error(err))
		}
	}()
}

func nonNil(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	return results
}
