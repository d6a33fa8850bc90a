package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pillpal-backend/internal/config"
)

const uploadURLExpiry = 5 * time.Minute

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// PhotoUploader issues upload URLs for verification photos
type PhotoUploader interface {
	PresignUpload(ctx context.Context, key, contentType string) (*UploadResponse, error)
}

// S3Uploader presigns PUT requests against an S3 bucket
type S3Uploader struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Uploader builds an uploader from the AWS configuration.
// Static credentials and a custom endpoint are optional.
func NewS3Uploader(ctx context.Context, cfg config.AWSConfig) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

// PresignUpload generates a pre-signed URL for uploading an object under key
func (u *S3Uploader) PresignUpload(ctx context.Context, key, contentType string) (*UploadResponse, error) {
	request, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		Key:       key,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}
