package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection settings of a MinIO or S3 bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

// MinioSink uploads artifacts to an object store bucket.
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioClient connects to the endpoint described by cfg.
func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", cfg.Endpoint, err)
	}
	return client, nil
}

// NewMinioSink returns a sink writing objects under prefix in bucket.
func NewMinioSink(client *minio.Client, bucket, prefix string) *MinioSink {
	return &MinioSink{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads data as one object. Object stores publish an object only once
// the upload completes, so no temporary object is needed.
func (s *MinioSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
