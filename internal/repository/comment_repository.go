package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flowblog/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	ListByPostPaginated(ctx context.Context, postID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error)
	ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error)
	LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// commentRow is a comment joined with its author's public fields.
type commentRow struct {
	domain.Comment
	Username      string  `db:"username"`
	UserFullName  string  `db:"user_full_name"`
	UserAvatarURL *string `db:"user_avatar_url"`
}

func (row commentRow) toDomain() domain.Comment {
	c := row.Comment
	c.User = &domain.CommentUser{
		ID:        c.ProfileID,
		Username:  row.Username,
		FullName:  row.UserFullName,
		AvatarURL: row.UserAvatarURL,
	}
	return c
}

const commentSelect = `
	SELECT
		c.comment_id, c.post_id, c.profile_id, c.parent_id, c.text,
		c.created_at, c.updated_at, c.deleted_at,
		u.username, u.full_name AS user_full_name, u.avatar_url AS user_avatar_url
	FROM comments c
	INNER JOIN users u ON c.profile_id = u.user_id`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (comment_id, post_id, profile_id, parent_id, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.PostID, comment.ProfileID, comment.ParentID, comment.Text,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var row commentRow
	query := commentSelect + ` WHERE c.comment_id = $1 AND c.deleted_at IS NULL`
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	comment := row.toDomain()
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET text = $2, updated_at = NOW()
		WHERE comment_id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, comment.ID, comment.Text).Scan(&comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCommentNotFound
	}
	return err
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE comments SET deleted_at = NOW() WHERE comment_id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ListByPost returns every live comment of a post, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	query := commentSelect + `
		WHERE c.post_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at ASC, c.comment_id ASC`

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, err
	}
	return toComments(rows), nil
}

func (r *commentRepository) ListByPostPaginated(ctx context.Context, postID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM comments WHERE post_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, postID); err != nil {
		return nil, 0, err
	}

	query := commentSelect + `
		WHERE c.post_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, err
	}
	return toComments(rows), total, nil
}

// ListByPosts returns the newest comments across several posts.
func (r *commentRepository) ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Comment, error) {
	if len(postIDs) == 0 {
		return []domain.Comment{}, nil
	}

	query, args, err := sqlx.In(commentSelect+`
		WHERE c.post_id IN (?) AND c.deleted_at IS NULL
		ORDER BY c.created_at DESC
		LIMIT ?`, postIDs, limit)
	if err != nil {
		return nil, err
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toComments(rows), nil
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM comments WHERE post_id IN (?) AND deleted_at IS NULL`, postIDs)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.GetContext(ctx, &count, r.db.Rebind(query), args...)
	return count, err
}

func (r *commentRepository) LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT MAX(created_at) FROM comments WHERE post_id IN (?) AND deleted_at IS NULL`, postIDs)
	if err != nil {
		return nil, err
	}

	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func toComments(rows []commentRow) []domain.Comment {
	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return comments
}
