package export

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/service/view"
)

type fakeStore struct {
	bucket string
	key    string
	body   string
	opts   minio.PutObjectOptions
}

func (f *fakeStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.bucket, f.key, f.body, f.opts = bucketName, objectName, string(b), opts
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func (f *fakeStore) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	return url.Parse("https://minio.test/" + bucketName + "/" + objectName + "?X-Amz-Expires=" + expires.String())
}

func TestExportPostViews(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	author := &domain.User{ID: uuid.New(), Role: "author"}
	post := &domain.Post{ID: uuid.New(), AuthorID: author.ID, Slug: "hello-world", Status: domain.PostPublished}

	views := new(mocks.ViewRepository)
	posts := new(mocks.PostRepository)
	posts.On("GetByID", ctx, post.ID).Return(post, nil)
	views.On("ListTimesSince", ctx, post.ID, mock.AnythingOfType("time.Time")).
		Return([]time.Time{now.Add(-24 * time.Hour), now.Add(-time.Hour), now}, nil).Once()

	viewSvc := view.NewService(views, posts, nil, 0, nil, view.WithClock(func() time.Time { return now }))
	store := &fakeStore{}
	svc := NewService(viewSvc, posts, store, "exports-bucket", 0, nil).(*service)
	svc.now = func() time.Time { return now }

	res, err := svc.ExportPostViews(ctx, author, post.ID, domain.Interval7d)
	require.NoError(t, err)

	assert.Equal(t, "exports-bucket", store.bucket)
	assert.Equal(t, "exports/"+author.ID.String()+"/"+post.ID.String()+"/20240510T123000Z.csv", res.ObjectKey)
	assert.Equal(t, res.ObjectKey, store.key)
	assert.Equal(t, "text/csv", store.opts.ContentType)
	assert.Contains(t, res.URL, "X-Amz-Expires=15m0s")
	assert.Equal(t, now.Add(15*time.Minute), res.ExpiresAt)

	lines := strings.Split(strings.TrimSpace(store.body), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "time_period,views_count", lines[0])
	assert.Equal(t, "2024-05-09,1", lines[7])
	assert.Equal(t, "2024-05-10,2", lines[8])
}

func TestExportPostViews_NotAuthor(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: uuid.New(), AuthorID: uuid.New()}
	posts := new(mocks.PostRepository)
	posts.On("GetByID", ctx, post.ID).Return(post, nil)

	svc := NewService(nil, posts, &fakeStore{}, "b", 0, nil)

	_, err := svc.ExportPostViews(ctx, &domain.User{ID: uuid.New(), Role: "admin"}, post.ID, domain.Interval24h)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExportPostViews_NoStorage(t *testing.T) {
	svc := NewService(nil, nil, nil, "b", 0, nil)

	_, err := svc.ExportPostViews(context.Background(), &domain.User{}, uuid.New(), domain.Interval24h)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
