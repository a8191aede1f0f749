package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AuditRoleAssigned   = "ROLE_ASSIGNED"
	AuditPostRemoved    = "POST_REMOVED"
	AuditCommentRemoved = "COMMENT_REMOVED"

	AuditEntityUser    = "user"
	AuditEntityPost    = "post"
	AuditEntityComment = "comment"
)

// AuditLog records a privileged action taken on someone else's content or
// account.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"audit_log_id"`
	ActorID    uuid.UUID       `json:"actor_id" db:"actor_id"`
	ActorName  *string         `json:"actor_name,omitempty" db:"actor_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type CreateAuditLogInput struct {
	ActorID    uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValue   any
	NewValue   any
}
