package storage

import (
	"context"
	"fmt"
	"io"

	appconfig "go-outlook-starter/core/config"
	"go-outlook-starter/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AttachmentStore resolves email attachment keys to their raw content.
type AttachmentStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3AttachmentStore returns nil when no bucket is configured; the email
// service treats a nil store as "attachments unsupported".
func NewS3AttachmentStore(ctx context.Context, cfg appconfig.AWSConfig) (AttachmentStore, error) {
	if cfg.AttachmentBucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("S3 attachment store initialized", "bucket", cfg.AttachmentBucket, "region", cfg.Region)
	return &s3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AttachmentBucket,
	}, nil
}

func (s *s3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Error("AttachmentStore:Fetch:Error", "key", key, "error", err)
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
