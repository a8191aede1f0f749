package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flowblog/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

const auditLogColumns = `
	al.audit_log_id, al.actor_id, u.username AS actor_name, al.action,
	al.entity_type, al.entity_id, al.old_value, al.new_value, al.created_at`

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (audit_log_id, actor_id, action, entity_type, entity_id, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.ActorID, log.Action, log.EntityType, log.EntityID,
		nullableJSON(log.OldValue), nullableJSON(log.NewValue),
	).Scan(&log.CreatedAt)
}

func (r *auditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + auditLogColumns + `
		FROM audit_logs al
		LEFT JOIN users u ON u.user_id = al.actor_id
		ORDER BY al.created_at DESC
		LIMIT $1 OFFSET $2`

	logs := []domain.AuditLog{}
	err := r.db.SelectContext(ctx, &logs, query, params.PageSize, params.Offset())
	return logs, total, err
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE entity_type = $1 AND entity_id = $2`
	if err := r.db.GetContext(ctx, &total, countQuery, entityType, entityID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + auditLogColumns + `
		FROM audit_logs al
		LEFT JOIN users u ON u.user_id = al.actor_id
		WHERE al.entity_type = $1 AND al.entity_id = $2
		ORDER BY al.created_at DESC
		LIMIT $3 OFFSET $4`

	logs := []domain.AuditLog{}
	err := r.db.SelectContext(ctx, &logs, query, entityType, entityID, params.PageSize, params.Offset())
	return logs, total, err
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
