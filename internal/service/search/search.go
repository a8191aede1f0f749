package search

import (
	"time"

	"flowblog/internal/domain"
)

const IndexPosts = "flowblog_posts"

// Result is a single search hit.
type Result struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	AuthorID    string     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Engine  string   `json:"engine"`
}

// PostDocument is what gets indexed for a published post.
type PostDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	AuthorID    string `json:"author_id"`
	PublishedAt int64  `json:"published_at"`
}

// Engine is a full-text index for posts.
type Engine interface {
	Search(query string, limit int) ([]Result, int, error)
	IndexPost(doc PostDocument) error
	DeletePost(id string) error
	Healthy() bool
}

func NewPostDocument(post *domain.Post) PostDocument {
	doc := PostDocument{
		ID:       post.ID.String(),
		Title:    post.Title,
		Slug:     post.Slug,
		Excerpt:  post.Excerpt,
		Content:  post.Content,
		AuthorID: post.AuthorID.String(),
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.Unix()
	}
	return doc
}

func resultFromPost(post domain.Post) Result {
	return Result{
		ID:          post.ID.String(),
		Title:       post.Title,
		Slug:        post.Slug,
		Excerpt:     post.Excerpt,
		AuthorID:    post.AuthorID.String(),
		PublishedAt: post.PublishedAt,
	}
}
