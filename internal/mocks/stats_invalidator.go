package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type StatsInvalidator struct {
	mock.Mock
}

func (m *StatsInvalidator) Invalidate(ctx context.Context, authorID uuid.UUID) {
	m.Called(ctx, authorID)
}
