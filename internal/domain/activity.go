package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityComment ActivityType = "comment"
	ActivityLike    ActivityType = "like"
)

// ActivityItem is one entry of a post's merged comment/like feed. Text is only
// set for comments.
type ActivityItem struct {
	Type      ActivityType `json:"type"`
	ID        uuid.UUID    `json:"id"`
	PostID    uuid.UUID    `json:"post_id"`
	ProfileID uuid.UUID    `json:"profile_id"`
	Text      *string      `json:"text,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	User      *CommentUser `json:"user,omitempty"`
}
