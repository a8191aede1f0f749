package post_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/pkg/markdown"
	"flowblog/internal/service/post"
)

func newService(t *testing.T, posts *mocks.PostRepository, users *mocks.UserRepository) post.Service {
	t.Helper()
	renderer, err := markdown.NewRenderer(16)
	require.NoError(t, err)
	return post.NewService(posts, users, renderer, nil, nil)
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("Draft with generated excerpt", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		content := "# Intro\n\n" + strings.Repeat("word ", 100)

		posts.On("Create", ctx, mock.MatchedBy(func(p *domain.Post) bool {
			return p.AuthorID == authorID &&
				strings.HasPrefix(p.Slug, "my-first-post-") &&
				p.Status == domain.PostDraft &&
				p.PublishedAt == nil &&
				strings.HasPrefix(p.Excerpt, "Intro word word")
		})).Return(nil).Once()

		p, err := svc.Create(ctx, authorID, domain.CreatePostInput{Title: "My First Post", Content: content})

		require.NoError(t, err)
		assert.Contains(t, string(p.ContentHTML), "<h1")
		assert.LessOrEqual(t, len([]rune(p.Excerpt)), 160)
		posts.AssertExpectations(t)
	})

	t.Run("Publish immediately", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		excerpt := "custom"

		posts.On("Create", ctx, mock.MatchedBy(func(p *domain.Post) bool {
			return p.Status == domain.PostPublished && p.PublishedAt != nil && p.Excerpt == "custom"
		})).Return(nil).Once()

		_, err := svc.Create(ctx, authorID, domain.CreatePostInput{Title: "T", Content: "c", Excerpt: &excerpt, Publish: true})

		require.NoError(t, err)
		posts.AssertExpectations(t)
	})
}

func TestPostService_GetBySlug(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	draft := &domain.Post{ID: uuid.New(), AuthorID: authorID, Slug: "draft-abc", Status: domain.PostDraft, Content: "hi"}

	t.Run("Draft hidden from others", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		posts.On("GetBySlug", ctx, "draft-abc").Return(draft, nil).Twice()

		_, err := svc.GetBySlug(ctx, "draft-abc", nil)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)

		other := uuid.New()
		_, err = svc.GetBySlug(ctx, "draft-abc", &other)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("Draft visible to author", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		users := new(mocks.UserRepository)
		svc := newService(t, posts, users)
		posts.On("GetBySlug", ctx, "draft-abc").Return(draft, nil).Once()
		users.On("GetByIDs", ctx, []uuid.UUID{authorID}).
			Return([]domain.User{{ID: authorID, Username: "ana", FullName: "Ana"}}, nil).Once()

		p, err := svc.GetBySlug(ctx, "draft-abc", &authorID)

		require.NoError(t, err)
		require.NotNil(t, p.Author)
		assert.Equal(t, "ana", p.Author.Username)
	})
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("Author updates content and excerpt follows", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		existing := &domain.Post{ID: uuid.New(), AuthorID: authorID, Content: "old", Excerpt: "old"}
		content := "brand new body"

		posts.On("GetByID", ctx, existing.ID).Return(existing, nil).Once()
		posts.On("Update", ctx, mock.MatchedBy(func(p *domain.Post) bool {
			return p.Content == content && p.Excerpt == content
		})).Return(nil).Once()

		_, err := svc.Update(ctx, &domain.User{ID: authorID}, existing.ID, domain.UpdatePostInput{Content: &content})

		require.NoError(t, err)
		posts.AssertExpectations(t)
	})

	t.Run("Admin cannot edit someone else's post", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		existing := &domain.Post{ID: uuid.New(), AuthorID: authorID}
		title := "x"

		posts.On("GetByID", ctx, existing.ID).Return(existing, nil).Once()

		_, err := svc.Update(ctx, &domain.User{ID: uuid.New(), Role: "admin"}, existing.ID, domain.UpdatePostInput{Title: &title})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	existing := &domain.Post{ID: uuid.New(), AuthorID: authorID}

	t.Run("Admin", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		auditSvc := new(mocks.AuditService)
		svc.SetAuditService(auditSvc)
		posts.On("GetByID", ctx, existing.ID).Return(existing, nil).Once()
		posts.On("Delete", ctx, existing.ID).Return(nil).Once()
		auditSvc.On("Record", ctx, mock.MatchedBy(func(in domain.CreateAuditLogInput) bool {
			return in.Action == domain.AuditPostRemoved && in.EntityID == existing.ID
		})).Once()

		require.NoError(t, svc.Delete(ctx, &domain.User{ID: uuid.New(), Role: "admin"}, existing.ID))
		posts.AssertExpectations(t)
		auditSvc.AssertExpectations(t)
	})

	t.Run("Stranger", func(t *testing.T) {
		posts := new(mocks.PostRepository)
		svc := newService(t, posts, new(mocks.UserRepository))
		posts.On("GetByID", ctx, existing.ID).Return(existing, nil).Once()

		err := svc.Delete(ctx, &domain.User{ID: uuid.New(), Role: "author"}, existing.ID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPostService_Publish(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	posts := new(mocks.PostRepository)
	svc := newService(t, posts, new(mocks.UserRepository))
	draft := &domain.Post{ID: uuid.New(), AuthorID: authorID, Status: domain.PostDraft}

	posts.On("GetByID", ctx, draft.ID).Return(draft, nil).Once()
	posts.On("Update", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Status == domain.PostPublished && p.PublishedAt != nil
	})).Return(nil).Once()

	p, err := svc.Publish(ctx, &domain.User{ID: authorID}, draft.ID)

	require.NoError(t, err)
	assert.True(t, p.IsPublished())
	posts.AssertExpectations(t)
}

func TestPostService_WritesInvalidateDashboard(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	author := &domain.User{ID: authorID, Role: "author"}

	posts := new(mocks.PostRepository)
	stats := new(mocks.StatsInvalidator)
	svc := newService(t, posts, new(mocks.UserRepository))
	svc.SetStatsInvalidator(stats)

	stats.On("Invalidate", ctx, authorID).Times(3)

	posts.On("Create", ctx, mock.Anything).Return(nil).Once()
	created, err := svc.Create(ctx, authorID, domain.CreatePostInput{Title: "Stats", Content: "body"})
	require.NoError(t, err)

	posts.On("GetByID", ctx, created.ID).Return(created, nil)
	posts.On("Update", ctx, mock.Anything).Return(nil).Once()
	_, err = svc.Publish(ctx, author, created.ID)
	require.NoError(t, err)

	posts.On("Delete", ctx, created.ID).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, author, created.ID))

	stats.AssertExpectations(t)
}

func TestPostService_ListPublished(t *testing.T) {
	ctx := context.Background()
	posts := new(mocks.PostRepository)
	users := new(mocks.UserRepository)
	svc := newService(t, posts, users)
	a, b := uuid.New(), uuid.New()
	params := domain.PaginationParams{Page: 1, PageSize: 10}

	posts.On("ListPublished", ctx, params).Return([]domain.Post{
		{ID: uuid.New(), AuthorID: a},
		{ID: uuid.New(), AuthorID: b},
		{ID: uuid.New(), AuthorID: a},
	}, int64(3), nil).Once()
	users.On("GetByIDs", ctx, []uuid.UUID{a, b}).Return([]domain.User{
		{ID: a, Username: "a"},
		{ID: b, Username: "b"},
	}, nil).Once()

	page, err := svc.ListPublished(ctx, params)

	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "a", page.Data[0].Author.Username)
	assert.Equal(t, "b", page.Data[1].Author.Username)
	assert.Equal(t, "a", page.Data[2].Author.Username)
}
