// Package storage is the blob store for product and collection images.
// The catalog only sees an opaque upload returning a public URL plus the
// key needed to delete the object later.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type BlobStore interface {
	Upload(ctx context.Context, body io.Reader, filename, contentType string) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, body io.Reader, filename, contentType string) (string, string, error) {
	key := fmt.Sprintf("products/%s%s", uuid.NewString(), path.Ext(filename))

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("s3 upload: %w", err)
	}
	return result.Location, key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}
