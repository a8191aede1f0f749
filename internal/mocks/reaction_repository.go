package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flowblog/internal/domain"
)

type ReactionRepository struct {
	mock.Mock
}

func (m *ReactionRepository) Insert(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	args := m.Called(ctx, reaction)
	return args.Bool(0), args.Error(1)
}

func (m *ReactionRepository) Delete(ctx context.Context, postID uuid.UUID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, postID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *ReactionRepository) Exists(ctx context.Context, postID uuid.UUID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, postID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *ReactionRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReactionRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Reaction, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reaction), args.Error(1)
}

func (m *ReactionRepository) ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Reaction, error) {
	args := m.Called(ctx, postIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reaction), args.Error(1)
}

func (m *ReactionRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, postIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReactionRepository) LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
