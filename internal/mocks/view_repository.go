package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flowblog/internal/domain"
)

type ViewRepository struct {
	mock.Mock
}

func (m *ViewRepository) Create(ctx context.Context, view *domain.ViewEvent) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *ViewRepository) ListTimesSince(ctx context.Context, postID uuid.UUID, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, postID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *ViewRepository) ListTimesForPostsSince(ctx context.Context, postIDs []uuid.UUID, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, postIDs, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *ViewRepository) GetStats(ctx context.Context, postID uuid.UUID) (*domain.ViewStats, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ViewStats), args.Error(1)
}

func (m *ViewRepository) TopReferrers(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error) {
	args := m.Called(ctx, postID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountEntry), args.Error(1)
}

func (m *ViewRepository) TopCountries(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error) {
	args := m.Called(ctx, postID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountEntry), args.Error(1)
}
