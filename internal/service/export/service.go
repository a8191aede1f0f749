package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/view"
)

const DefaultURLExpiry = 15 * time.Minute

// ObjectStore is the part of *minio.Client used for exports.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Result struct {
	ObjectKey string              `json:"object_key"`
	URL       string              `json:"url"`
	ExpiresAt time.Time           `json:"expires_at"`
	Buckets   []domain.ViewBucket `json:"buckets"`
}

type Service interface {
	ExportPostViews(ctx context.Context, actor *domain.User, postID uuid.UUID, interval domain.Interval) (*Result, error)
}

type service struct {
	viewSvc  view.Service
	postRepo repository.PostRepository
	store    ObjectStore
	bucket   string
	expiry   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService builds the exporter. store may be nil, in which case every
// export fails with domain.ErrStorageUnavailable.
func NewService(viewSvc view.Service, postRepo repository.PostRepository, store ObjectStore, bucket string, expiry time.Duration, log *zap.Logger) Service {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &service{
		viewSvc:  viewSvc,
		postRepo: postRepo,
		store:    store,
		bucket:   bucket,
		expiry:   expiry,
		logger:   logger.OrNop(log),
		now:      time.Now,
	}
}

func (s *service) ExportPostViews(ctx context.Context, actor *domain.User, postID uuid.UUID, interval domain.Interval) (*Result, error) {
	if s.store == nil {
		return nil, domain.ErrStorageUnavailable
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, domain.ErrForbidden
	}

	buckets, err := s.viewSvc.Chart(ctx, postID, interval)
	if err != nil {
		return nil, err
	}

	body, err := encodeCSV(buckets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	now := s.now().UTC()
	key := ObjectKey(actor.ID, postID, now)

	_, err = s.store.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:        "text/csv",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", post.Slug+"-views-"+string(interval)+".csv"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	presigned, err := s.store.PresignedGetObject(ctx, s.bucket, key, s.expiry, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to presign export: %w", err)
	}

	s.logger.Info("view export created",
		zap.Stringer("post_id", postID),
		zap.String("interval", string(interval)),
		zap.String("object", key),
	)

	return &Result{
		ObjectKey: key,
		URL:       presigned.String(),
		ExpiresAt: now.Add(s.expiry),
		Buckets:   buckets,
	}, nil
}

func ObjectKey(authorID, postID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s/%s.csv", authorID, postID, at.UTC().Format("20060102T150405Z"))
}

func encodeCSV(buckets []domain.ViewBucket) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"time_period", "views_count"}); err != nil {
		return nil, err
	}
	for _, b := range buckets {
		if err := w.Write([]string{b.TimePeriod, strconv.FormatInt(b.ViewsCount, 10)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
