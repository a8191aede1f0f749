package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is a like. A profile holds at most one per post.
type Reaction struct {
	ID        uuid.UUID `json:"id" db:"reaction_id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	ProfileID uuid.UUID `json:"profile_id" db:"profile_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *CommentUser `json:"user,omitempty" db:"-"`
}

type ReactionSummary struct {
	PostID uuid.UUID `json:"post_id"`
	Count  int64     `json:"count"`
	Liked  bool      `json:"liked"`
}
