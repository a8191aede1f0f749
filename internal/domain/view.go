package domain

import (
	"time"

	"github.com/google/uuid"
)

// ViewEvent is an append-only read of a post.
type ViewEvent struct {
	ID             uuid.UUID  `json:"id" db:"view_id"`
	PostID         uuid.UUID  `json:"post_id" db:"post_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	SessionID      string     `json:"session_id" db:"session_id"`
	ViewTime       int        `json:"view_time" db:"view_time"`
	ReadPercentage int        `json:"read_percentage" db:"read_percentage"`
	Referrer       *string    `json:"referrer,omitempty" db:"referrer"`
	Country        *string    `json:"country,omitempty" db:"country"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

type TrackViewInput struct {
	SessionID      string  `json:"session_id" validate:"required,max=128"`
	ViewTime       int     `json:"view_time" validate:"min=0"`
	ReadPercentage int     `json:"read_percentage" validate:"min=0,max=100"`
	Referrer       *string `json:"referrer" validate:"omitempty,max=2048"`
	Country        *string `json:"country" validate:"omitempty,len=2"`
}

type Interval string

const (
	Interval24h Interval = "24h"
	Interval7d  Interval = "7d"
	Interval30d Interval = "30d"
	Interval90d Interval = "90d"
)

func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if !i.IsValid() {
		return "", ErrInvalidInterval
	}
	return i, nil
}

func (i Interval) IsValid() bool {
	switch i {
	case Interval24h, Interval7d, Interval30d, Interval90d:
		return true
	}
	return false
}

// Range is the span of time the interval covers, ending now.
func (i Interval) Range() time.Duration {
	switch i {
	case Interval24h:
		return 24 * time.Hour
	case Interval7d:
		return 7 * 24 * time.Hour
	case Interval30d:
		return 30 * 24 * time.Hour
	case Interval90d:
		return 90 * 24 * time.Hour
	}
	return 0
}

// Step is the bucket width: hourly for 24h, daily otherwise.
func (i Interval) Step() time.Duration {
	if i == Interval24h {
		return time.Hour
	}
	return 24 * time.Hour
}

// KeyLayout truncates a UTC timestamp to its bucket key.
func (i Interval) KeyLayout() string {
	if i == Interval24h {
		return "2006-01-02T15"
	}
	return "2006-01-02"
}

type ViewBucket struct {
	TimePeriod string `json:"time_period"`
	ViewsCount int64  `json:"views_count"`
}

type CountEntry struct {
	Key   string `json:"key" db:"key"`
	Count int64  `json:"count" db:"count"`
}

type ViewStats struct {
	PostID             uuid.UUID    `json:"post_id"`
	TotalViews         int64        `json:"total_views"`
	UniqueSessions     int64        `json:"unique_sessions"`
	AvgReadPercentage  float64      `json:"avg_read_percentage"`
	AvgViewTimeSeconds float64      `json:"avg_view_time_seconds"`
	TopReferrers       []CountEntry `json:"top_referrers"`
	TopCountries       []CountEntry `json:"top_countries"`
}
