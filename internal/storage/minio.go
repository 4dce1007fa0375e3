package storage

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spec-kit/project-gallery/internal/config"
)

// Ensure MinioUploader implements Uploader interface.
var _ Uploader = (*MinioUploader)(nil)

// MinioUploader is an S3-compatible uploader.
type MinioUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioUploader builds the client. No request is made until the first call.
func NewMinioUploader(cfg config.StorageConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}

	return &MinioUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{})
}

func (u *MinioUploader) Upload(ctx context.Context, reader io.ReadSeeker, length int64, key, contentType string) error {
	_, err := u.client.PutObject(ctx, u.bucket, key, reader, length, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	return err
}

func (u *MinioUploader) Exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.StatObject(ctx, u.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *MinioUploader) PublicURL(key string) string {
	return u.baseURL + "/" + strings.TrimLeft(key, "/")
}
