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

type ReactionRepository interface {
	// Insert reports whether a new row was written. An existing like for the
	// same (post, profile) pair is left untouched.
	Insert(ctx context.Context, reaction *domain.Reaction) (bool, error)
	Delete(ctx context.Context, postID, profileID uuid.UUID) (bool, error)
	Exists(ctx context.Context, postID, profileID uuid.UUID) (bool, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Reaction, error)
	ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Reaction, error)
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error)
	LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error)
}

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

type reactionRow struct {
	domain.Reaction
	Username      string  `db:"username"`
	UserFullName  string  `db:"user_full_name"`
	UserAvatarURL *string `db:"user_avatar_url"`
}

const reactionSelect = `
	SELECT
		r.reaction_id, r.post_id, r.profile_id, r.created_at,
		u.username, u.full_name AS user_full_name, u.avatar_url AS user_avatar_url
	FROM reactions r
	INNER JOIN users u ON r.profile_id = u.user_id`

func (r *reactionRepository) Insert(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	query := `
		INSERT INTO reactions (reaction_id, post_id, profile_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, profile_id) DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, reaction.ID, reaction.PostID, reaction.ProfileID).Scan(&reaction.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *reactionRepository) Delete(ctx context.Context, postID, profileID uuid.UUID) (bool, error) {
	query := `DELETE FROM reactions WHERE post_id = $1 AND profile_id = $2`
	res, err := r.db.ExecContext(ctx, query, postID, profileID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *reactionRepository) Exists(ctx context.Context, postID, profileID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reactions WHERE post_id = $1 AND profile_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, postID, profileID)
	return exists, err
}

func (r *reactionRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM reactions WHERE post_id = $1`
	err := r.db.GetContext(ctx, &count, query, postID)
	return count, err
}

func (r *reactionRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Reaction, error) {
	query := reactionSelect + ` WHERE r.post_id = $1 ORDER BY r.created_at ASC`

	var rows []reactionRow
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, err
	}
	return toReactions(rows), nil
}

func (r *reactionRepository) ListByPosts(ctx context.Context, postIDs []uuid.UUID, limit int) ([]domain.Reaction, error) {
	if len(postIDs) == 0 {
		return []domain.Reaction{}, nil
	}

	query, args, err := sqlx.In(reactionSelect+`
		WHERE r.post_id IN (?)
		ORDER BY r.created_at DESC
		LIMIT ?`, postIDs, limit)
	if err != nil {
		return nil, err
	}

	var rows []reactionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toReactions(rows), nil
}

func (r *reactionRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM reactions WHERE post_id IN (?)`, postIDs)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.GetContext(ctx, &count, r.db.Rebind(query), args...)
	return count, err
}

func (r *reactionRepository) LatestByPosts(ctx context.Context, postIDs []uuid.UUID) (*time.Time, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT MAX(created_at) FROM reactions WHERE post_id IN (?)`, postIDs)
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

func toReactions(rows []reactionRow) []domain.Reaction {
	reactions := make([]domain.Reaction, 0, len(rows))
	for _, row := range rows {
		reaction := row.Reaction
		reaction.User = &domain.CommentUser{
			ID:        reaction.ProfileID,
			Username:  row.Username,
			FullName:  row.UserFullName,
			AvatarURL: row.UserAvatarURL,
		}
		reactions = append(reactions, reaction)
	}
	return reactions
}
