package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Post         PostRepository
	Comment      CommentRepository
	Reaction     ReactionRepository
	View         ViewRepository
	Notification NotificationRepository
	AuditLog     AuditLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		Post:         NewPostRepository(db),
		Comment:      NewCommentRepository(db),
		Reaction:     NewReactionRepository(db),
		View:         NewViewRepository(db),
		Notification: NewNotificationRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}
}
