package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/yukikurage/learning-admin-api/internal/config"
)

// S3Resolver presigns GET URLs for s3://bucket/key locators and passes any
// other locator through.
type S3Resolver struct {
	presign *s3.PresignClient
	expires time.Duration
	now     func() time.Time
}

// NewS3Resolver creates a resolver from the storage config. Static
// credentials are used when both keys are set, the default chain otherwise.
func NewS3Resolver(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Resolver, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
		logger.Info("S3 media resolver using static credentials", zap.String("region", cfg.Region))
	} else {
		logger.Warn("S3 media resolver using default credential chain", zap.String("region", cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewS3ResolverFromClient(s3.NewFromConfig(awsCfg), cfg.PresignExpiry), nil
}

// NewS3ResolverFromClient wraps an existing S3 client.
func NewS3ResolverFromClient(client *s3.Client, expires time.Duration) *S3Resolver {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3Resolver{
		presign: s3.NewPresignClient(client),
		expires: expires,
		now:     time.Now,
	}
}

// Resolve returns a presigned GET URL for S3 locators.
func (r *S3Resolver) Resolve(ctx context.Context, locator string) (Media, error) {
	bucket, key, ok, err := ParseS3Locator(locator)
	if err != nil {
		return Media{}, err
	}
	if !ok {
		return Media{URL: locator}, nil
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = r.expires
	})
	if err != nil {
		return Media{}, fmt.Errorf("presign get: %w", err)
	}

	expiresAt := r.now().UTC().Add(r.expires)
	return Media{URL: req.URL, ExpiresAt: &expiresAt}, nil
}
