package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/repository"
	"flowblog/internal/service/dashboard"
)

func TestDashboardService_GetStats(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	postIDs := []uuid.UUID{uuid.New(), uuid.New()}
	commentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	likeAt := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	posts := new(mocks.PostRepository)
	comments := new(mocks.CommentRepository)
	reactions := new(mocks.ReactionRepository)

	posts.On("CountByAuthor", ctx, authorID).Return(&repository.AuthorPostCounts{Total: 3, Published: 2, Drafts: 1, TotalViews: 120}, nil).Once()
	posts.On("ListIDsByAuthor", ctx, authorID).Return(postIDs, nil).Once()
	posts.On("TopByViews", ctx, authorID, 5).Return([]domain.PostSummary{{ID: postIDs[0], ViewCount: 100}}, nil).Once()
	reactions.On("CountByPosts", ctx, postIDs).Return(int64(7), nil).Once()
	reactions.On("LatestByPosts", ctx, postIDs).Return(&likeAt, nil).Once()
	comments.On("CountByPosts", ctx, postIDs).Return(int64(4), nil).Once()
	comments.On("LatestByPosts", ctx, postIDs).Return(&commentAt, nil).Once()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := dashboard.NewService(posts, comments, reactions, rdb, nil)

	stats, err := svc.GetStats(ctx, authorID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.DraftPosts)
	assert.Equal(t, int64(120), stats.TotalViews)
	assert.Equal(t, int64(7), stats.TotalLikes)
	assert.Equal(t, int64(4), stats.TotalComments)
	require.NotNil(t, stats.LastActivityAt)
	assert.True(t, likeAt.Equal(*stats.LastActivityAt))
	assert.Len(t, stats.TopPosts, 1)
	assert.True(t, mr.Exists("dashboard:"+authorID.String()+":stats"))

	// served from cache
	cached, err := svc.GetStats(ctx, authorID)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalLikes, cached.TotalLikes)
	posts.AssertExpectations(t)

	svc.Invalidate(ctx, authorID)
	assert.False(t, mr.Exists("dashboard:"+authorID.String()+":stats"))
}

func TestDashboardService_GetStats_NoPosts(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	posts := new(mocks.PostRepository)

	posts.On("CountByAuthor", ctx, authorID).Return(&repository.AuthorPostCounts{}, nil).Once()
	posts.On("ListIDsByAuthor", ctx, authorID).Return([]uuid.UUID{}, nil).Once()

	svc := dashboard.NewService(posts, new(mocks.CommentRepository), new(mocks.ReactionRepository), nil, nil)

	stats, err := svc.GetStats(ctx, authorID)

	require.NoError(t, err)
	assert.Zero(t, stats.TotalLikes)
	assert.Nil(t, stats.LastActivityAt)
	assert.NotNil(t, stats.TopPosts)
}
