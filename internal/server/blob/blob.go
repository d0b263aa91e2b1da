// Package blob stores profile media (avatar images, resume documents) in
// S3-compatible object storage and hands back public URLs.
package blob

import (
	"context"

	"github.com/binarybhaskar/branchit/internal/common"
)

// Config holds the object storage connection settings.
type Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	BaseEndpoint  string
	Bucket        string
	PublicBaseURL string
	// MaxDocumentBytes caps UploadDocument payloads. Zero falls back to
	// common.MaxResumeBytes.
	MaxDocumentBytes int64
}

// Client uploads profile media. Each user owns fixed object keys, so a new
// upload overwrites the previous one.
type Client interface {
	// UploadImage stores the user's avatar and returns its public URL.
	// Images are not size-capped.
	UploadImage(ctx context.Context, userID string, data []byte, contentType string) (string, error)
	// UploadDocument stores the user's resume and returns its public URL.
	// Payloads over the configured cap fail with common.ErrorFileTooLarge
	// before any network call; payloads that are not valid PDF fail with
	// common.ErrorValidation.
	UploadDocument(ctx context.Context, userID string, data []byte) (string, error)
}

func (c Config) maxDocumentBytes() int64 {
	if c.MaxDocumentBytes > 0 {
		return c.MaxDocumentBytes
	}
	return common.MaxResumeBytes
}
