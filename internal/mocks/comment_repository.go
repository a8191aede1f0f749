package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flowblog/internal/domain"
)

type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *CommentRepository) ListByPostPaginated(ctx context.Context, postID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	args := m.Called(ctx, postID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *CommentRepository) ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Comment, error) {
	args := m.Called(ctx, postIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *CommentRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, postIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommentRepository) LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
