package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flowblog/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context, params domain.PaginationParams) ([]domain.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, params domain.PaginationParams) ([]domain.Post, int64, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Post, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	ListIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (*AuthorPostCounts, error)
	TopByViews(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.PostSummary, error)
}

type AuthorPostCounts struct {
	Total      int64 `db:"total"`
	Published  int64 `db:"published"`
	Drafts     int64 `db:"drafts"`
	TotalViews int64 `db:"total_views"`
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (post_id, author_id, title, slug, content, excerpt, cover_url, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING view_count, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Slug, post.Content, post.Excerpt,
		post.CoverURL, post.Status, post.PublishedAt,
	).Scan(&post.ViewCount, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT * FROM posts WHERE post_id = $1 AND deleted_at IS NULL`, id)
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT * FROM posts WHERE slug = $1 AND deleted_at IS NULL`, slug)
}

func (r *postRepository) getOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var post domain.Post
	err := r.db.GetContext(ctx, &post, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, excerpt = $4, cover_url = $5, status = $6,
			published_at = $7, updated_at = NOW()
		WHERE post_id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		post.ID, post.Title, post.Content, post.Excerpt, post.CoverURL, post.Status, post.PublishedAt,
	).Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrPostNotFound
	}
	return err
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET deleted_at = NOW() WHERE post_id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postRepository) ListPublished(ctx context.Context, params domain.PaginationParams) ([]domain.Post, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts WHERE status = 'published' AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM posts
		WHERE status = 'published' AND deleted_at IS NULL
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2`

	posts := []domain.Post{}
	err := r.db.SelectContext(ctx, &posts, query, params.PageSize, params.Offset())
	return posts, total, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, params domain.PaginationParams) ([]domain.Post, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts WHERE author_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, authorID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM posts
		WHERE author_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	posts := []domain.Post{}
	err := r.db.SelectContext(ctx, &posts, query, authorID, params.PageSize, params.Offset())
	return posts, total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q literally.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func (r *postRepository) Search(ctx context.Context, q string, limit int) ([]domain.Post, error) {
	pattern := containsPattern(q)
	query := `
		SELECT * FROM posts
		WHERE status = 'published' AND deleted_at IS NULL
			AND (title ILIKE $1 ESCAPE '\' OR content ILIKE $1 ESCAPE '\')
		ORDER BY published_at DESC
		LIMIT $2`

	posts := []domain.Post{}
	err := r.db.SelectContext(ctx, &posts, query, pattern, limit)
	return posts, err
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET view_count = view_count + 1 WHERE post_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postRepository) ListIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT post_id FROM posts WHERE author_id = $1 AND deleted_at IS NULL`
	err := r.db.SelectContext(ctx, &ids, query, authorID)
	return ids, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (*AuthorPostCounts, error) {
	var counts AuthorPostCounts
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'published') AS published,
			COUNT(*) FILTER (WHERE status = 'draft') AS drafts,
			COALESCE(SUM(view_count), 0) AS total_views
		FROM posts
		WHERE author_id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &counts, query, authorID); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *postRepository) TopByViews(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.PostSummary, error) {
	query := `
		SELECT
			p.post_id, p.title, p.slug, p.status, p.view_count, p.created_at,
			(SELECT COUNT(*) FROM reactions re WHERE re.post_id = p.post_id) AS like_count,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.post_id AND c.deleted_at IS NULL) AS comment_count
		FROM posts p
		WHERE p.author_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.view_count DESC, p.created_at DESC
		LIMIT $2`

	summaries := []domain.PostSummary{}
	err := r.db.SelectContext(ctx, &summaries, query, authorID, limit)
	return summaries, err
}
