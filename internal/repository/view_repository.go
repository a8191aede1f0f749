package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flowblog/internal/domain"
)

type ViewRepository interface {
	Create(ctx context.Context, view *domain.ViewEvent) error
	ListTimesSince(ctx context.Context, postID uuid.UUID, since time.Time) ([]time.Time, error)
	ListTimesForPostsSince(ctx context.Context, postIDs []uuid.UUID, since time.Time) ([]time.Time, error)
	GetStats(ctx context.Context, postID uuid.UUID) (*domain.ViewStats, error)
	TopReferrers(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error)
	TopCountries(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error)
}

type viewRepository struct {
	db *sqlx.DB
}

func NewViewRepository(db *sqlx.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Create(ctx context.Context, view *domain.ViewEvent) error {
	query := `
		INSERT INTO post_views (view_id, post_id, user_id, session_id, view_time, read_percentage, referrer, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		view.ID, view.PostID, view.UserID, view.SessionID, view.ViewTime,
		view.ReadPercentage, view.Referrer, view.Country,
	).Scan(&view.CreatedAt)
}

func (r *viewRepository) ListTimesSince(ctx context.Context, postID uuid.UUID, since time.Time) ([]time.Time, error) {
	times := []time.Time{}
	query := `SELECT created_at FROM post_views WHERE post_id = $1 AND created_at >= $2`
	err := r.db.SelectContext(ctx, &times, query, postID, since)
	return times, err
}

func (r *viewRepository) ListTimesForPostsSince(ctx context.Context, postIDs []uuid.UUID, since time.Time) ([]time.Time, error) {
	times := []time.Time{}
	if len(postIDs) == 0 {
		return times, nil
	}

	query, args, err := sqlx.In(`SELECT created_at FROM post_views WHERE post_id IN (?) AND created_at >= ?`, postIDs, since)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &times, r.db.Rebind(query), args...)
	return times, err
}

func (r *viewRepository) GetStats(ctx context.Context, postID uuid.UUID) (*domain.ViewStats, error) {
	var row struct {
		TotalViews     int64   `db:"total_views"`
		UniqueSessions int64   `db:"unique_sessions"`
		AvgRead        float64 `db:"avg_read"`
		AvgViewTime    float64 `db:"avg_view_time"`
	}
	query := `
		SELECT
			COUNT(*) AS total_views,
			COUNT(DISTINCT session_id) AS unique_sessions,
			COALESCE(AVG(read_percentage), 0)::float8 AS avg_read,
			COALESCE(AVG(view_time), 0)::float8 AS avg_view_time
		FROM post_views
		WHERE post_id = $1`

	if err := r.db.GetContext(ctx, &row, query, postID); err != nil {
		return nil, err
	}

	return &domain.ViewStats{
		PostID:             postID,
		TotalViews:         row.TotalViews,
		UniqueSessions:     row.UniqueSessions,
		AvgReadPercentage:  row.AvgRead,
		AvgViewTimeSeconds: row.AvgViewTime,
	}, nil
}

func (r *viewRepository) TopReferrers(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error) {
	return r.topBy(ctx, "referrer", postID, limit)
}

func (r *viewRepository) TopCountries(ctx context.Context, postID uuid.UUID, limit int) ([]domain.CountEntry, error) {
	return r.topBy(ctx, "country", postID, limit)
}

// topBy groups by a fixed column name; column is never user input.
func (r *viewRepository) topBy(ctx context.Context, column string, postID uuid.UUID, limit int) ([]domain.CountEntry, error) {
	query := `
		SELECT ` + column + ` AS key, COUNT(*) AS count
		FROM post_views
		WHERE post_id = $1 AND ` + column + ` IS NOT NULL AND ` + column + ` <> ''
		GROUP BY ` + column + `
		ORDER BY count DESC, key ASC
		LIMIT $2`

	entries := []domain.CountEntry{}
	err := r.db.SelectContext(ctx, &entries, query, postID, limit)
	return entries, err
}
