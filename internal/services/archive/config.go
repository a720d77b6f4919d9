package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds settings for exporting matches to an S3-compatible bucket
type Config struct {
	// Bucket is the destination bucket. Export is disabled when empty.
	Bucket string

	// Endpoint overrides the S3 endpoint (e.g., for R2 or MinIO)
	Endpoint string
	Region   string

	// Static credentials; the default AWS credential chain is used when empty
	AccessKeyID     string
	SecretAccessKey string

	// Interval between export runs
	Interval time.Duration
}

// DefaultConfig returns default archive configuration
func DefaultConfig() Config {
	return Config{
		Region:   "auto",
		Interval: 5 * time.Minute,
	}
}

// Enabled reports whether a destination bucket is configured
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// NewS3Client builds an S3 client from the archive configuration
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
