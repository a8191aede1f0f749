package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flowblog/internal/domain"
)

type AuditService struct {
	mock.Mock
}

func (m *AuditService) Record(ctx context.Context, input domain.CreateAuditLogInput) {
	m.Called(ctx, input)
}

func (m *AuditService) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.PaginatedResponse[domain.AuditLog]), args.Error(1)
}

func (m *AuditService) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	args := m.Called(ctx, entityType, entityID, params)
	return args.Get(0).(domain.PaginatedResponse[domain.AuditLog]), args.Error(1)
}
