package search_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/service/search"
)

type fakeEngine struct {
	mu      sync.Mutex
	healthy bool
	err     error
	results []search.Result
	indexed []search.PostDocument
	deleted []string
}

func (f *fakeEngine) Search(query string, limit int) ([]search.Result, int, error) {
	return f.results, len(f.results), f.err
}

func (f *fakeEngine) IndexPost(doc search.PostDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeEngine) DeletePost(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEngine) Healthy() bool { return f.healthy }

func (f *fakeEngine) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.indexed), len(f.deleted)
}

func TestSearch_UsesEngineWhenHealthy(t *testing.T) {
	engine := &fakeEngine{healthy: true, results: []search.Result{{ID: "1", Title: "Go"}}}
	posts := new(mocks.PostRepository)
	svc := search.NewService(engine, posts, nil)

	resp, err := svc.Search(context.Background(), "go", 10)

	require.NoError(t, err)
	assert.Equal(t, "meilisearch", resp.Engine)
	assert.Len(t, resp.Results, 1)
	posts.AssertNotCalled(t, "Search")
}

func TestSearch_FallsBackToPostgres(t *testing.T) {
	ctx := context.Background()
	published := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := []domain.Post{{ID: uuid.New(), Title: "Go tips", Slug: "go-tips-x", PublishedAt: &published}}

	cases := map[string]search.Engine{
		"no engine":        nil,
		"unhealthy engine": &fakeEngine{healthy: false},
		"engine error":     &fakeEngine{healthy: true, err: errors.New("timeout")},
	}

	for name, engine := range cases {
		t.Run(name, func(t *testing.T) {
			posts := new(mocks.PostRepository)
			posts.On("Search", ctx, "go", search.DefaultLimit).Return(rows, nil).Once()
			svc := search.NewService(engine, posts, nil)

			resp, err := svc.Search(ctx, "go", 0)

			require.NoError(t, err)
			assert.Equal(t, "postgres", resp.Engine)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, "go-tips-x", resp.Results[0].Slug)
			posts.AssertExpectations(t)
		})
	}
}

func TestIndexPost(t *testing.T) {
	engine := &fakeEngine{healthy: true}
	svc := search.NewService(engine, new(mocks.PostRepository), nil)

	svc.IndexPost(&domain.Post{ID: uuid.New(), Status: domain.PostPublished})
	svc.IndexPost(&domain.Post{ID: uuid.New(), Status: domain.PostDraft})

	assert.Eventually(t, func() bool {
		indexed, deleted := engine.counts()
		return indexed == 1 && deleted == 1
	}, time.Second, 10*time.Millisecond)
}
