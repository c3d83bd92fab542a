package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jonathan/resuai/internal/config"
	"github.com/jonathan/resuai/internal/intake"
)

// MinIOStore keeps pictures in a bucket and references them by public URL.
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	publicBase *url.URL
}

// NewMinIOStore connects to the object store and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	publicBase, err := publicBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{
		client:     client,
		bucketName: cfg.Bucket,
		publicBase: publicBase,
	}, nil
}

// publicBaseURL returns "<public endpoint>/<bucket>/", defaulting the public
// endpoint to the API endpoint.
func publicBaseURL(cfg config.MinIOConfig) (*url.URL, error) {
	endpoint := cfg.PublicEndpoint
	if endpoint == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		endpoint = scheme + "://" + cfg.Endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid minio public endpoint, host missing")
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/" + cfg.Bucket + "/"
	return parsed, nil
}

// StorePicture uploads the picture and returns its public URL.
func (s *MinIOStore) StorePicture(ctx context.Context, userID uuid.UUID, upload *intake.Upload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("picture is empty")
	}

	key := ObjectKey(userID, upload.Extension())
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(upload.Data), int64(len(upload.Data)),
		minio.PutObjectOptions{ContentType: upload.MIMEType, CacheControl: "public, max-age=31536000, immutable"})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.publicURL(key), nil
}

// RemovePicture deletes the object behind a URL returned by StorePicture.
// A missing object counts as removed.
func (s *MinIOStore) RemovePicture(ctx context.Context, ref string) error {
	key, ok := s.objectKey(ref)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) publicURL(key string) string {
	return s.publicBase.String() + key
}

// objectKey maps a public URL back to its object key.
func (s *MinIOStore) objectKey(ref string) (string, bool) {
	key, ok := strings.CutPrefix(ref, s.publicBase.String())
	if !ok || !strings.HasPrefix(key, "users/") {
		return "", false
	}
	return key, true
}
