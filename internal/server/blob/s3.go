package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/logging"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, in)
	}
)

type s3Client struct {
	config Config
	logger logging.Logger
}

// NewS3Client returns a Client backed by the configured bucket.
func NewS3Client(config Config, logger logging.Logger) Client {
	return &s3Client{config: config, logger: logger}
}

func avatarKey(userID string) string {
	return fmt.Sprintf("profiles/%s/avatar", userID)
}

func resumeKey(userID string) string {
	return fmt.Sprintf("profiles/%s/resume.pdf", userID)
}

func (c *s3Client) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.config.AccessKey,
			c.config.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.config.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

func (c *s3Client) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.config.PublicBaseURL, "/"), c.config.Bucket, key)
}

func (c *s3Client) put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUpload, err)
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.logger.Error(ctx, "blob upload failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrorUpload, err)
	}

	return c.publicURL(key), nil
}

func (c *s3Client) UploadImage(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", common.ErrorValidation)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return c.put(ctx, avatarKey(userID), data, contentType)
}

func (c *s3Client) UploadDocument(ctx context.Context, userID string, data []byte) (string, error) {
	if int64(len(data)) > c.config.maxDocumentBytes() {
		return "", fmt.Errorf("%w: document is %d bytes, limit is %d", common.ErrorFileTooLarge, len(data), c.config.maxDocumentBytes())
	}
	if _, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("%w: not a valid pdf", common.ErrorValidation)
	}
	return c.put(ctx, resumeKey(userID), data, "application/pdf")
}
