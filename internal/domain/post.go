package domain

import (
	"html/template"
	"time"

	"github.com/google/uuid"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

type Post struct {
	ID          uuid.UUID     `json:"id" db:"post_id"`
	AuthorID    uuid.UUID     `json:"author_id" db:"author_id"`
	Title       string        `json:"title" db:"title"`
	Slug        string        `json:"slug" db:"slug"`
	Content     string        `json:"content" db:"content"`
	ContentHTML template.HTML `json:"content_html,omitempty" db:"-"`
	Excerpt     string        `json:"excerpt" db:"excerpt"`
	CoverURL    *string       `json:"cover_url,omitempty" db:"cover_url"`
	Status      PostStatus    `json:"status" db:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty" db:"published_at"`
	ViewCount   int64         `json:"view_count" db:"view_count"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time    `json:"-" db:"deleted_at"`

	Author *PublicProfile `json:"author,omitempty" db:"-"`
}

func (p *Post) IsPublished() bool {
	return p.Status == PostPublished
}

// VisibleTo reports whether viewerID may read the post. Drafts are only
// visible to their author.
func (p *Post) VisibleTo(viewerID *uuid.UUID) bool {
	return p.IsPublished() || (viewerID != nil && *viewerID == p.AuthorID)
}

// PostSummary is the per-post row of the creator dashboard.
type PostSummary struct {
	ID           uuid.UUID  `json:"id" db:"post_id"`
	Title        string     `json:"title" db:"title"`
	Slug         string     `json:"slug" db:"slug"`
	Status       PostStatus `json:"status" db:"status"`
	ViewCount    int64      `json:"view_count" db:"view_count"`
	LikeCount    int64      `json:"like_count" db:"like_count"`
	CommentCount int64      `json:"comment_count" db:"comment_count"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type CreatePostInput struct {
	Title    string  `json:"title" validate:"required,min=1,max=200"`
	Content  string  `json:"content" validate:"required"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,max=300"`
	CoverURL *string `json:"cover_url" validate:"omitempty,url"`
	Publish  bool    `json:"publish"`
}

type UpdatePostInput struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,max=300"`
	CoverURL *string `json:"cover_url" validate:"omitempty,url"`
}
