package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
)

// objectClient is the subset of *minio.Client used here.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type S3Storage struct {
	client  objectClient
	bucket  string
	baseURL string
	logger  *logger.Logger
}

// NewS3Storage connects to MinIO and creates the bucket when it is missing.
func NewS3Storage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "use_ssl", cfg.UseSSL)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("S3Storage: bucket created", "bucket", cfg.Bucket)
	}

	base := cfg.PublicURL
	if base == "" {
		base = client.EndpointURL().String()
	}
	return newS3Storage(client, cfg.Bucket, base, log), nil
}

func newS3Storage(client objectClient, bucket, baseURL string, log *logger.Logger) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Named("S3Storage"),
	}
}

// Put streams obj.Body to the bucket and returns <base>/<bucket>/<key>.
func (s *S3Storage) Put(ctx context.Context, obj domain.Object) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
	})
	if err != nil {
		s.logger.Error("S3Storage.Put: PutObject failed", "bucket", s.bucket, "key", obj.Key, "error", err.Error())
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", obj.Key, s.bucket, err)
	}
	s.logger.Debug("S3Storage.Put: object stored", "key", info.Key, "etag", info.ETag, "size", info.Size)
	return s.ObjectURL(obj.Key), nil
}

func (s *S3Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

func (s *S3Storage) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + url.PathEscape(s.bucket) + "/" + strings.Join(segments, "/")
}
