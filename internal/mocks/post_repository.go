package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flowblog/internal/domain"
	"flowblog/internal/repository"
)

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PostRepository) ListPublished(ctx context.Context, params domain.PaginationParams) ([]domain.Post, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *PostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, params domain.PaginationParams) ([]domain.Post, int64, error) {
	args := m.Called(ctx, authorID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *PostRepository) Search(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *PostRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PostRepository) ListIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *PostRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (*repository.AuthorPostCounts, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AuthorPostCounts), args.Error(1)
}

func (m *PostRepository) TopByViews(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.PostSummary, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostSummary), args.Error(1)
}
