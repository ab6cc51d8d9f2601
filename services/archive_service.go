package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kendall-kelly/legacy-storefront-api/config"
)

// EventArchive stores raw verified webhook payloads for later audit
type EventArchive interface {
	Store(ctx context.Context, eventID string, payload []byte) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
}

// S3EventArchive keeps payloads in a private S3 bucket
type S3EventArchive struct {
	client *s3.Client
	bucket string
}

// NewS3EventArchive builds an S3 client from the configured credentials.
// Empty static credentials fall back to the default AWS provider chain.
func NewS3EventArchive(ctx context.Context, cfg *config.Config) (*S3EventArchive, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3EventArchive{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// ArchiveKey is the object key for an event's payload
func ArchiveKey(eventID string) string {
	return fmt.Sprintf("webhooks/%s.json", eventID)
}

// Store uploads the payload and returns its key
func (a *S3EventArchive) Store(ctx context.Context, eventID string, payload []byte) (string, error) {
	key := ArchiveKey(eventID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// PresignedURL returns a one-hour download link for key
func (a *S3EventArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(a.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}

	log.Printf("[Archive] Presigned %s", key)
	return request.URL, nil
}

// NopEventArchive is used when no bucket is configured
type NopEventArchive struct{}

func (NopEventArchive) Store(context.Context, string, []byte) (string, error) {
	return "", nil
}

func (NopEventArchive) PresignedURL(context.Context, string) (string, error) {
	return "", nil
}
