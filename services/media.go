package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rpupo63/blog-backend/config"
)

// MediaStore turns uploaded images into public URLs and removes them again
type MediaStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicID string) error
}

var ErrDeleteRejected = errors.New("media store did not confirm deletion")

// UploadError is returned when the CDN answers an upload with a non-2xx status
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed: %d - %s", e.StatusCode, e.Body)
}

// PublicIDFromURL extracts the CDN public id from a hosted image URL: the
// last path segment without its extension.
//
// Example: "https://res.cloudinary.com/demo/image/upload/v1/abc123.jpg" -> "abc123"
func PublicIDFromURL(url string) string {
	url = strings.SplitN(url, "?", 2)[0]
	base := path.Base(url)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// NewMediaStoreFromConfig builds the store selected by MEDIA_BACKEND
// ("cloudinary" by default, or "s3"). It returns nil, nil when the selected
// backend has no credentials so the server can run without uploads.
func NewMediaStoreFromConfig(ctx context.Context, cfg map[string]string) (MediaStore, error) {
	client := &http.Client{Timeout: config.GetDuration(cfg, "MEDIA_TIMEOUT_SECONDS", time.Second, 30)}

	switch strings.ToLower(config.GetString(cfg, "MEDIA_BACKEND", "cloudinary")) {
	case "s3":
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, nil
		}
		store, err := NewS3Store(ctx, S3Config{
			Bucket:        bucket,
			Region:        config.GetString(cfg, "S3_REGION", "us-east-1"),
			Prefix:        config.GetString(cfg, "S3_PREFIX", "images/"),
			Endpoint:      config.GetString(cfg, "S3_ENDPOINT", ""),
			PublicBaseURL: config.GetString(cfg, "S3_PUBLIC_BASE_URL", ""),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "cloudinary":
		cloudName := config.GetString(cfg, "CLOUDINARY_CLOUD_NAME", "")
		if cloudName == "" {
			return nil, nil
		}
		store, err := NewCloudinaryStore(CloudinaryConfig{
			CloudName:    cloudName,
			UploadPreset: config.GetString(cfg, "CLOUDINARY_UPLOAD_PRESET", ""),
			APIKey:       config.GetString(cfg, "CLOUDINARY_API_KEY", ""),
			APISecret:    config.GetString(cfg, "CLOUDINARY_API_SECRET", ""),
			BaseURL:      config.GetString(cfg, "CLOUDINARY_BASE_URL", ""),
		}, client)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", config.GetString(cfg, "MEDIA_BACKEND", ""))
	}
}
