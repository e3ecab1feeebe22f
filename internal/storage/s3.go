package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps objects in S3 buckets with public-read object URLs.
type S3Store struct {
	client *s3.Client
	region string
}

// NewS3Store loads the ambient AWS configuration and returns an S3-backed store.
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		region: region,
	}, nil
}

// Upload puts the object. Without upsert the write is conditional on the key
// not existing yet.
func (s *S3Store) Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	if bucket == "" || path == "" {
		return ErrInvalidPath
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if !opts.Upsert {
		input.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: put object %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PublicURL composes the virtual-hosted S3 object URL.
func (s *S3Store) PublicURL(bucket, path string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, path)
}
