package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JUP-iter/vidaryproject/internal/config"
)

const signedURLExpiry = time.Hour

// MinioStore talks to an S3-compatible bucket directly.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string // when set the bucket is public and GET URLs need no signing
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init bucket client: %w", err)
	}

	return &MinioStore{
		client:        cli,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if size < 0 {
		// Unknown length: bound the multipart buffer so a large stream
		// never pins more than one part in memory.
		opts.PartSize = 16 << 20
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return nil, fmt.Errorf("storage: put %s: %w", key, err)
	}

	return s.objectFor(ctx, key)
}

func (s *MinioStore) SignedGetURL(ctx context.Context, key string) (*Object, error) {
	return s.objectFor(ctx, key)
}

func (s *MinioStore) PresignPost(ctx context.Context, key string) (*PresignedPost, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(signedURLExpiry)); err != nil {
		return nil, err
	}
	if err := policy.SetContentLengthRange(1, MaxUploadSize); err != nil {
		return nil, err
	}

	postURL, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("storage: presign post %s: %w", key, err)
	}

	obj, err := s.objectFor(ctx, key)
	if err != nil {
		return nil, err
	}

	return &PresignedPost{
		Key:     key,
		URL:     postURL.String(),
		Fields:  fields,
		FileURL: obj.URL,
	}, nil
}

func (s *MinioStore) objectFor(ctx context.Context, key string) (*Object, error) {
	if s.publicBaseURL != "" {
		return &Object{Key: key, URL: s.publicBaseURL + "/" + key}, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, signedURLExpiry, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: sign get %s: %w", key, err)
	}
	return &Object{Key: key, URL: u.String()}, nil
}
