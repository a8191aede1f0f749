package comment_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/service/comment"
)

type fixture struct {
	comments   *mocks.CommentRepository
	posts      *mocks.PostRepository
	moderation *mocks.ModerationService
	notifier   *mocks.NotificationService
}

func newFixture() *fixture {
	return &fixture{
		comments:   new(mocks.CommentRepository),
		posts:      new(mocks.PostRepository),
		moderation: new(mocks.ModerationService),
		notifier:   new(mocks.NotificationService),
	}
}

func (f *fixture) service(rdb *redis.Client) comment.Service {
	return comment.NewService(f.comments, f.posts, f.moderation, f.notifier, rdb, nil)
}

func publishedPost(authorID uuid.UUID) *domain.Post {
	return &domain.Post{ID: uuid.New(), AuthorID: authorID, Title: "Post", Slug: "post", Status: domain.PostPublished}
}

func TestCommentService_Create(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	readerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "Great post").Return(true, nil).Once()
		f.comments.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.PostID == post.ID && c.ProfileID == readerID && c.Text == "Great post" && c.ParentID == nil
		})).Return(nil).Once()
		f.notifier.On("NotifyNewComment", ctx, post, mock.AnythingOfType("*domain.Comment")).Return(nil).Once()

		c, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{Text: "Great post"})

		require.NoError(t, err)
		assert.Equal(t, "Great post", c.Text)
		f.comments.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Reply to comment on same post", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)
		parent := &domain.Comment{ID: uuid.New(), PostID: post.ID, ProfileID: authorID}

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "thanks").Return(true, nil).Once()
		f.comments.On("GetByID", ctx, parent.ID).Return(parent, nil).Once()
		f.comments.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.ParentID != nil && *c.ParentID == parent.ID
		})).Return(nil).Once()
		f.notifier.On("NotifyNewComment", ctx, post, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{ParentID: &parent.ID, Text: "thanks"})

		require.NoError(t, err)
		f.comments.AssertExpectations(t)
	})

	t.Run("Parent from another post", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)
		parent := &domain.Comment{ID: uuid.New(), PostID: uuid.New()}

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "hi").Return(true, nil).Once()
		f.comments.On("GetByID", ctx, parent.ID).Return(parent, nil).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{ParentID: &parent.ID, Text: "hi"})

		assert.ErrorIs(t, err, domain.ErrInvalidParent)
		f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing parent", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)
		parentID := uuid.New()

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "hi").Return(true, nil).Once()
		f.comments.On("GetByID", ctx, parentID).Return(nil, domain.ErrCommentNotFound).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{ParentID: &parentID, Text: "hi"})

		assert.ErrorIs(t, err, domain.ErrInvalidParent)
	})

	t.Run("Profane text", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "bad words").Return(false, nil).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{Text: "bad words"})

		assert.ErrorIs(t, err, domain.ErrProfaneContent)
	})

	t.Run("Filter not ready", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
		f.moderation.On("Check", "hello").Return(false, domain.ErrFilterNotReady).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{Text: "hello"})

		assert.ErrorIs(t, err, domain.ErrFilterNotReady)
	})

	t.Run("Draft post", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		post := publishedPost(authorID)
		post.Status = domain.PostDraft

		f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()

		_, err := svc.Create(ctx, post.ID, readerID, domain.CreateCommentInput{Text: "early"})

		assert.ErrorIs(t, err, domain.ErrPostNotPublished)
	})
}

func TestCommentService_Update(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	commentID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		existing := &domain.Comment{ID: commentID, ProfileID: ownerID, Text: "Original"}

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		f.moderation.On("Check", "Updated").Return(true, nil).Once()
		f.comments.On("Update", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.ID == commentID && c.Text == "Updated"
		})).Return(nil).Once()

		c, err := svc.Update(ctx, ownerID, commentID, domain.UpdateCommentInput{Text: "Updated"})

		require.NoError(t, err)
		assert.Equal(t, "Updated", c.Text)
		f.comments.AssertExpectations(t)
	})

	t.Run("Permission Error", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		existing := &domain.Comment{ID: commentID, ProfileID: ownerID}

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()

		c, err := svc.Update(ctx, uuid.New(), commentID, domain.UpdateCommentInput{Text: "Updated"})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Nil(t, c)
	})
}

func TestCommentService_Delete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	authorID := uuid.New()
	postID := uuid.New()
	commentID := uuid.New()
	existing := &domain.Comment{ID: commentID, PostID: postID, ProfileID: ownerID}

	t.Run("Owner", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		stats := new(mocks.StatsInvalidator)
		svc.SetStatsInvalidator(stats)

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, AuthorID: authorID}, nil).Once()
		f.comments.On("Delete", ctx, commentID).Return(nil).Once()
		stats.On("Invalidate", ctx, authorID).Once()

		err := svc.Delete(ctx, &domain.User{ID: ownerID, Role: "reader"}, commentID)

		assert.NoError(t, err)
		f.comments.AssertExpectations(t)
		stats.AssertExpectations(t)
	})

	t.Run("Post author", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, AuthorID: authorID}, nil).Once()
		f.comments.On("Delete", ctx, commentID).Return(nil).Once()

		err := svc.Delete(ctx, &domain.User{ID: authorID, Role: "author"}, commentID)

		assert.NoError(t, err)
	})

	t.Run("Admin", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)
		auditSvc := new(mocks.AuditService)
		svc.SetAuditService(auditSvc)
		admin := &domain.User{ID: uuid.New(), Role: "admin"}

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, AuthorID: authorID}, nil).Once()
		f.comments.On("Delete", ctx, commentID).Return(nil).Once()
		auditSvc.On("Record", ctx, mock.MatchedBy(func(in domain.CreateAuditLogInput) bool {
			return in.Action == domain.AuditCommentRemoved && in.ActorID == admin.ID && in.EntityID == commentID
		})).Once()

		err := svc.Delete(ctx, admin, commentID)

		assert.NoError(t, err)
		auditSvc.AssertExpectations(t)
	})

	t.Run("Stranger", func(t *testing.T) {
		f := newFixture()
		svc := f.service(nil)

		f.comments.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, AuthorID: authorID}, nil).Once()

		err := svc.Delete(ctx, &domain.User{ID: uuid.New(), Role: "reader"}, commentID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestCommentService_GetTree(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture()
	svc := f.service(rdb)

	postID := uuid.New()
	rootID, replyID, orphanID, missingID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	flat := []domain.Comment{
		{ID: rootID, PostID: postID, Text: "root"},
		{ID: replyID, PostID: postID, ParentID: &rootID, Text: "reply"},
		{ID: orphanID, PostID: postID, ParentID: &missingID, Text: "orphan"},
	}

	f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, Status: domain.PostPublished}, nil).Twice()
	f.comments.On("ListByPost", ctx, postID).Return(flat, nil).Once()

	tree, err := svc.GetTree(ctx, postID, nil)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, rootID, tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, replyID, tree[0].Replies[0].ID)
	assert.True(t, mr.Exists("comments:"+postID.String()+":tree"))

	cached, err := svc.GetTree(ctx, postID, nil)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "reply", cached[0].Replies[0].Text)
	f.comments.AssertNumberOfCalls(t, "ListByPost", 1)
}

func TestCommentService_CreateInvalidatesTree(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture()
	svc := f.service(rdb)
	post := publishedPost(uuid.New())
	key := "comments:" + post.ID.String() + ":tree"
	require.NoError(t, mr.Set(key, "[]"))

	f.posts.On("GetByID", ctx, post.ID).Return(post, nil).Once()
	f.moderation.On("Check", "new").Return(true, nil).Once()
	f.comments.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.notifier.On("NotifyNewComment", ctx, post, mock.Anything).Return(nil).Once()

	_, err := svc.Create(ctx, post.ID, uuid.New(), domain.CreateCommentInput{Text: "new"})
	require.NoError(t, err)

	assert.False(t, mr.Exists(key))
}

func TestCommentService_ListByPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service(nil)
	postID := uuid.New()
	params := domain.PaginationParams{Page: 2, PageSize: 1}

	f.posts.On("GetByID", ctx, postID).Return(&domain.Post{ID: postID, Status: domain.PostPublished}, nil).Once()
	f.comments.On("ListByPostPaginated", ctx, postID, params).
		Return([]domain.Comment{{ID: uuid.New()}}, int64(3), nil).Once()

	page, err := svc.ListByPost(ctx, postID, nil, params)

	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestCommentService_DraftVisibility(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	authorID := uuid.New()
	strangerID := uuid.New()
	draft := &domain.Post{ID: uuid.New(), AuthorID: authorID, Status: domain.PostDraft}
	key := "comments:" + draft.ID.String() + ":tree"
	require.NoError(t, mr.Set(key, `[{"id":"`+uuid.NewString()+`","text":"cached"}]`))

	f := newFixture()
	svc := f.service(rdb)
	f.posts.On("GetByID", ctx, draft.ID).Return(draft, nil)

	t.Run("Tree hidden from anonymous readers", func(t *testing.T) {
		_, err := svc.GetTree(ctx, draft.ID, nil)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("Tree hidden from other users", func(t *testing.T) {
		_, err := svc.GetTree(ctx, draft.ID, &strangerID)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("List hidden from anonymous readers", func(t *testing.T) {
		_, err := svc.ListByPost(ctx, draft.ID, nil, domain.PaginationParams{})
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
		f.comments.AssertNotCalled(t, "ListByPostPaginated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Author still sees tree", func(t *testing.T) {
		tree, err := svc.GetTree(ctx, draft.ID, &authorID)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, "cached", tree[0].Text)
	})
}
