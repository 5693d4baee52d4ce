package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cliptray/cliptray/internal/store/file"
)

// Sink stores mirror documents at a target location.
type Sink interface {
	Put(ctx context.Context, target string, data []byte) error
	Delete(ctx context.Context, target string) error
	Exists(ctx context.Context, target string) (bool, error)
}

// LocalSink writes mirrors to the filesystem with atomic replacement.
type LocalSink struct{}

func (LocalSink) Put(_ context.Context, target string, data []byte) error {
	return file.WriteFileAtomic(target, data)
}

func (LocalSink) Delete(_ context.Context, target string) error {
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (LocalSink) Exists(_ context.Context, target string) (bool, error) {
	_, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// S3Options configures the object storage sink.
type S3Options struct {
	Region         string
	Endpoint       string // S3-compatible endpoint (MinIO, R2); empty uses AWS
	ForcePathStyle bool
	AccessKeyID    string
	SecretKey      string
}

// S3Sink writes mirrors to s3://bucket/key targets.
type S3Sink struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Sink builds a client from the default AWS credential chain, or from
// static keys when both are configured.
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})
	return &S3Sink{client: client, uploader: manager.NewUploader(client)}, nil
}

func (s *S3Sink) Put(ctx context.Context, target string, data []byte) error {
	bucket, key, err := ParseS3URL(target)
	if err != nil {
		return err
	}
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Sink) Delete(ctx context.Context, target string) error {
	bucket, key, err := ParseS3URL(target)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Sink) Exists(ctx context.Context, target string) (bool, error) {
	bucket, key, err := ParseS3URL(target)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("head s3://%s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// IsS3URL reports whether an export path names an object storage prefix.
func IsS3URL(path string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(path)), "s3://")
}

// ParseS3URL splits s3://bucket/key into its parts. The key may be empty.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, "s3") || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 url %q", raw)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// joinKey appends name to an object key prefix.
func joinKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
