package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrInvalidParent       = errors.New("parent comment does not belong to this post")
	ErrInvalidInterval     = errors.New("invalid interval, expected one of 24h, 7d, 30d, 90d")
	ErrProfaneContent      = errors.New("content violates the community guidelines")
	ErrFilterNotReady      = errors.New("moderation filter is not initialized")
	ErrPostNotPublished    = errors.New("post is not published")
	ErrStorageUnavailable  = errors.New("object storage is not configured")
	ErrInvalidReadProgress = errors.New("read percentage must be between 0 and 100")
)
