package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/service/activity"
)

func TestActivityService_GetActivityLog(t *testing.T) {
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	postID := uuid.New()

	t.Run("merges both sources", func(t *testing.T) {
		comments := new(mocks.CommentRepository)
		reactions := new(mocks.ReactionRepository)
		svc := activity.NewService(comments, reactions, new(mocks.PostRepository))

		c := domain.Comment{ID: uuid.New(), PostID: postID, Text: "hi", CreatedAt: base.Add(10 * time.Second)}
		r := domain.Reaction{ID: uuid.New(), PostID: postID, CreatedAt: base.Add(5 * time.Second)}
		comments.On("ListByPost", mock.Anything, postID).Return([]domain.Comment{c}, nil).Once()
		reactions.On("ListByPost", mock.Anything, postID).Return([]domain.Reaction{r}, nil).Once()

		items, err := svc.GetActivityLog(context.Background(), postID)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, domain.ActivityComment, items[0].Type)
		assert.Equal(t, domain.ActivityLike, items[1].Type)
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		comments := new(mocks.CommentRepository)
		reactions := new(mocks.ReactionRepository)
		svc := activity.NewService(comments, reactions, new(mocks.PostRepository))
		boom := errors.New("boom")

		comments.On("ListByPost", mock.Anything, postID).Return([]domain.Comment{}, nil).Maybe()
		reactions.On("ListByPost", mock.Anything, postID).Return(nil, boom).Once()

		items, err := svc.GetActivityLog(context.Background(), postID)

		assert.ErrorIs(t, err, boom)
		assert.Nil(t, items)
	})
}

func TestActivityService_RecentForAuthor(t *testing.T) {
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	authorID := uuid.New()

	t.Run("truncates to limit", func(t *testing.T) {
		comments := new(mocks.CommentRepository)
		reactions := new(mocks.ReactionRepository)
		posts := new(mocks.PostRepository)
		svc := activity.NewService(comments, reactions, posts)
		postIDs := []uuid.UUID{uuid.New()}

		posts.On("ListIDsByAuthor", mock.Anything, authorID).Return(postIDs, nil).Once()
		comments.On("ListByPosts", mock.Anything, postIDs, 2).Return([]domain.Comment{
			{ID: uuid.New(), CreatedAt: base.Add(3 * time.Minute)},
			{ID: uuid.New(), CreatedAt: base.Add(1 * time.Minute)},
		}, nil).Once()
		reactions.On("ListByPosts", mock.Anything, postIDs, 2).Return([]domain.Reaction{
			{ID: uuid.New(), CreatedAt: base.Add(2 * time.Minute)},
		}, nil).Once()

		items, err := svc.RecentForAuthor(context.Background(), authorID, 2)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, domain.ActivityComment, items[0].Type)
		assert.Equal(t, domain.ActivityLike, items[1].Type)
	})

	t.Run("author without posts", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := activity.NewService(new(mocks.CommentRepository), new(mocks.ReactionRepository), posts)

		posts.On("ListIDsByAuthor", mock.Anything, authorID).Return([]uuid.UUID{}, nil).Once()

		items, err := svc.RecentForAuthor(context.Background(), authorID, 10)

		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
