package post

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/pkg/markdown"
	"flowblog/internal/repository"
	"flowblog/internal/service/audit"
	"flowblog/internal/service/dashboard"
	"flowblog/internal/service/search"
)

const excerptRunes = 160

type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, input domain.CreatePostInput) (*domain.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	// GetBySlug returns published posts to anyone and drafts to their author.
	GetBySlug(ctx context.Context, slug string, viewerID *uuid.UUID) (*domain.Post, error)
	// GetOwned returns the post if actor is its author or an admin.
	GetOwned(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
	Publish(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error)
	Unpublish(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error)
	ListPublished(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error)
	Search(ctx context.Context, query string, limit int) (*search.Response, error)
	SetAuditService(auditSvc audit.Service)
	SetStatsInvalidator(stats dashboard.Invalidator)
}

type service struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	renderer *markdown.Renderer
	search   search.Service
	audit    audit.Service
	stats    dashboard.Invalidator
	logger   *zap.Logger
}

func NewService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	renderer *markdown.Renderer,
	searchSvc search.Service,
	log *zap.Logger,
) Service {
	return &service{
		postRepo: postRepo,
		userRepo: userRepo,
		renderer: renderer,
		search:   searchSvc,
		logger:   logger.OrNop(log),
	}
}

func (s *service) SetAuditService(auditSvc audit.Service) {
	s.audit = auditSvc
}

func (s *service) SetStatsInvalidator(stats dashboard.Invalidator) {
	s.stats = stats
}

func (s *service) invalidateStats(ctx context.Context, authorID uuid.UUID) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, authorID)
	}
}

func (s *service) Create(ctx context.Context, authorID uuid.UUID, input domain.CreatePostInput) (*domain.Post, error) {
	post := &domain.Post{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    input.Title,
		Slug:     NewSlug(input.Title),
		Content:  input.Content,
		CoverURL: input.CoverURL,
		Status:   domain.PostDraft,
	}

	if input.Excerpt != nil && *input.Excerpt != "" {
		post.Excerpt = *input.Excerpt
	} else {
		post.Excerpt = s.renderer.Excerpt(input.Content, excerptRunes)
	}

	if input.Publish {
		now := time.Now().UTC()
		post.Status = domain.PostPublished
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.invalidateStats(ctx, authorID)

	s.indexIfPublished(post)
	s.render(post)

	return post, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.render(post)
	return post, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string, viewerID *uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !post.VisibleTo(viewerID) {
		return nil, domain.ErrPostNotFound
	}

	s.render(post)
	s.attachAuthors(ctx, []*domain.Post{post})

	return post, nil
}

func (s *service) GetOwned(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdatePostInput) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.CoverURL != nil {
		post.CoverURL = input.CoverURL
	}
	switch {
	case input.Excerpt != nil:
		post.Excerpt = *input.Excerpt
	case input.Content != nil:
		post.Excerpt = s.renderer.Excerpt(post.Content, excerptRunes)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	s.invalidateStats(ctx, post.AuthorID)

	s.indexIfPublished(post)
	s.render(post)

	return post, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	post, err := s.GetOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.invalidateStats(ctx, post.AuthorID)

	if s.search != nil {
		s.search.RemovePost(post.ID)
	}

	if post.AuthorID != actor.ID && s.audit != nil {
		s.audit.Record(ctx, domain.CreateAuditLogInput{
			ActorID:    actor.ID,
			Action:     domain.AuditPostRemoved,
			EntityType: domain.AuditEntityPost,
			EntityID:   post.ID,
			OldValue:   map[string]any{"author_id": post.AuthorID, "title": post.Title, "slug": post.Slug},
		})
	}
	return nil
}

func (s *service) Publish(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error) {
	return s.setStatus(ctx, actor, id, domain.PostPublished)
}

func (s *service) Unpublish(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Post, error) {
	return s.setStatus(ctx, actor, id, domain.PostDraft)
}

func (s *service) setStatus(ctx context.Context, actor *domain.User, id uuid.UUID, status domain.PostStatus) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if post.Status == status {
		s.render(post)
		return post, nil
	}

	post.Status = status
	if status == domain.PostPublished && post.PublishedAt == nil {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post status: %w", err)
	}
	s.invalidateStats(ctx, post.AuthorID)

	if s.search != nil {
		s.search.IndexPost(post)
	}
	s.render(post)

	return post, nil
}

func (s *service) ListPublished(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	params.Validate()

	posts, total, err := s.postRepo.ListPublished(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}

	ptrs := make([]*domain.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	s.attachAuthors(ctx, ptrs)

	return domain.NewPaginatedResponse(posts, params.Page, params.PageSize, total), nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	params.Validate()

	posts, total, err := s.postRepo.ListByAuthor(ctx, authorID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}

	return domain.NewPaginatedResponse(posts, params.Page, params.PageSize, total), nil
}

func (s *service) Search(ctx context.Context, query string, limit int) (*search.Response, error) {
	return s.search.Search(ctx, query, limit)
}

func (s *service) indexIfPublished(post *domain.Post) {
	if s.search != nil && post.IsPublished() {
		s.search.IndexPost(post)
	}
}

// render fills ContentHTML. A rendering failure leaves it empty.
func (s *service) render(post *domain.Post) {
	key := fmt.Sprintf("%s:%d", post.ID, post.UpdatedAt.UnixNano())
	html, err := s.renderer.RenderCached(key, post.Content)
	if err != nil {
		s.logger.Warn("failed to render post", zap.Stringer("post_id", post.ID), zap.Error(err))
		return
	}
	post.ContentHTML = html
}

func (s *service) attachAuthors(ctx context.Context, posts []*domain.Post) {
	if len(posts) == 0 {
		return
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load post authors", zap.Error(err))
		return
	}

	profiles := make(map[uuid.UUID]domain.PublicProfile, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].Public()
	}
	for _, p := range posts {
		if profile, ok := profiles[p.AuthorID]; ok {
			p.Author = &profile
		}
	}
}
