package raster

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API used to read images.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves s3://bucket/key URIs.
type S3Source struct {
	client   S3Client
	maxBytes int64
}

// NewS3Source wraps an existing client.
func NewS3Source(client S3Client) *S3Source {
	return &S3Source{client: client, maxBytes: 10 << 20}
}

// NewS3SourceFromConfig builds an S3 client from cfg using the default AWS
// credential chain unless static keys are set.
func NewS3SourceFromConfig(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: s3 region is required", ErrInvalidConfig)
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return NewS3Source(client), nil
}

func (s *S3Source) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	bucket := ref.Host
	key := strings.TrimPrefix(ref.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: malformed s3 reference %s", ErrSourceNotFound, ref)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, ref)
	}
	defer func() { _ = out.Body.Close() }()
	return readLimited(out.Body, s.maxBytes)
}

func classifyS3Error(err error, ref *url.URL) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, ref)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %s", ErrSourceNotFound, ref)
		case "AccessDenied":
			return fmt.Errorf("%w: access denied to %s", ErrCrossOrigin, ref)
		}
		return fmt.Errorf("s3 get failed (code: %s): %w", apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("s3 get failed: %w", err)
}
