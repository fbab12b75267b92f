package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPresignedURLExpiry is used when the configuration leaves it unset.
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported content type")

// FileStorage is the object store behind exercise media and the gym logo.
// An expiry of zero means the store's configured default.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL the client PUTs the object to.
	// The upload must carry the same Content-Type header.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// NewObjectKey builds a unique key under prefix, e.g.
// "exercises/<id>/3f6c...e1.mp4". The extension comes from contentType.
func NewObjectKey(prefix, contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("%s/%s%s", strings.TrimSuffix(prefix, "/"), uuid.NewString(), ext)
}

// CheckMediaType accepts image/* and video/* content types only.
func CheckMediaType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	if !strings.HasPrefix(mediaType, "image/") && !strings.HasPrefix(mediaType, "video/") {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return nil
}

// CheckImageType accepts image/* content types only.
func CheckImageType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return nil
}
