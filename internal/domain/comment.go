package domain

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID  `json:"id" db:"comment_id"`
	PostID    uuid.UUID  `json:"post_id" db:"post_id"`
	ProfileID uuid.UUID  `json:"profile_id" db:"profile_id"`
	ParentID  *uuid.UUID `json:"parent_id" db:"parent_id"`
	Text      string     `json:"text" db:"text"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`

	User *CommentUser `json:"user,omitempty" db:"-"`
}

type CommentUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
}

// CommentNode is a comment with its replies resolved.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

type CreateCommentInput struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Text     string     `json:"text" validate:"required,min=1,max=2000"`
}

type UpdateCommentInput struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}
