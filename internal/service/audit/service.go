package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
)

type Service interface {
	// Record stores an entry. Failures are logged, never returned.
	Record(ctx context.Context, input domain.CreateAuditLogInput)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
	logger    *zap.Logger
}

func NewService(auditRepo repository.AuditLogRepository, log *zap.Logger) Service {
	return &service{
		auditRepo: auditRepo,
		logger:    logger.OrNop(log),
	}
}

func (s *service) Record(ctx context.Context, input domain.CreateAuditLogInput) {
	entry := &domain.AuditLog{
		ID:         uuid.New(),
		ActorID:    input.ActorID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		OldValue:   marshal(input.OldValue),
		NewValue:   marshal(input.NewValue),
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log",
			zap.String("action", input.Action),
			zap.Stringer("entity_id", input.EntityID),
			zap.Error(err),
		)
	}
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()

	logs, total, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}

func (s *service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()

	logs, total, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}

func marshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
