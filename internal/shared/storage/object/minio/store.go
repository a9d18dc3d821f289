package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	mc "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"checkcontrat-backend/internal/shared/storage/object"
)

// Options configures a MinIO-backed store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Store implements ObjectStore on an S3-compatible MinIO bucket.
type Store struct {
	client *mc.Client
	bucket string
	prefix string
}

// New connects to MinIO and creates the bucket if it does not exist yet.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Endpoint) == "" || strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	cli, err := mc.New(opts.Endpoint, &mc.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket exists: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, mc.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &Store{client: cli, bucket: opts.Bucket, prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/")}, nil
}

func (s *Store) key(storageKey string) string {
	k := strings.TrimLeft(storageKey, "/")
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}

// SaveWithKey streams r to the bucket under storageKey.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, s.key(storageKey), r, -1, mc.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("minio put object key=%s: %w", s.key(storageKey), err)
	}
	return info.Size, nil
}

// Open returns the object body. Missing keys map to object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(storageKey), mc.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(storageKey, err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.mapErr(storageKey, err)
	}
	return obj, nil
}

// Exists stats the object.
func (s *Store) Exists(ctx context.Context, storageKey string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.key(storageKey), mc.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("minio stat object key=%s: %w", s.key(storageKey), err)
	}
	return true, nil
}

func (s *Store) mapErr(storageKey string, err error) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("%w: %s", object.ErrNotFound, storageKey)
	}
	return fmt.Errorf("minio get object key=%s: %w", s.key(storageKey), err)
}

func isNoSuchKey(err error) bool {
	code := mc.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

var _ object.ObjectStore = (*Store)(nil)
