package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"
)

// CloudinaryConfig holds the account settings of the Cloudinary store.
// UploadPreset is the unsigned credential used for uploads; APIKey and
// APISecret sign the privileged destroy call.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	BaseURL      string
}

type CloudinaryStore struct {
	cfg CloudinaryConfig
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore configures the Cloudinary SDK for cfg. BaseURL
// overrides the API host and client, when set, carries every request.
func NewCloudinaryStore(cfg CloudinaryConfig, client *http.Client) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Cloudinary: %w", err)
	}
	if cfg.BaseURL != "" {
		cld.Upload.Config.API.UploadPrefix = strings.TrimRight(cfg.BaseURL, "/")
	}

	httpClient := http.Client{}
	if client != nil {
		httpClient = *client
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = statusTransport{base: base}
	cld.Upload.Client = httpClient

	return &CloudinaryStore{cfg: cfg, cld: cld}, nil
}

type statusKey struct{}

// statusTransport records the response status into the *int stored in the
// request context. The SDK decodes error bodies without exposing it.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if status, ok := req.Context().Value(statusKey{}).(*int); ok && resp != nil {
		*status = resp.StatusCode
	}
	return resp, err
}

func withStatus(ctx context.Context) (context.Context, *int) {
	status := new(int)
	return context.WithValue(ctx, statusKey{}, status), status
}

func cdnRejected(status int) bool {
	return status != 0 && (status < 200 || status > 299)
}

// Upload sends the file with the unsigned upload preset and returns the
// secure URL of the hosted image.
// Parameters:
//   - filename: Original file name, only logged
//   - r: Image bytes
//
// Returns:
//   - The https URL of the uploaded image
//   - *UploadError when the CDN answers with a non-2xx status
func (c *CloudinaryStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ctx, status := withStatus(ctx)
	result, err := c.cld.Upload.UnsignedUpload(ctx, r, c.cfg.UploadPreset, uploader.UploadParams{ResourceType: "image"})
	if err != nil {
		if cdnRejected(*status) {
			return "", &UploadError{StatusCode: *status, Body: err.Error()}
		}
		return "", fmt.Errorf("failed to send request to Cloudinary: %w", err)
	}

	if cdnRejected(*status) || result.Error.Message != "" {
		log.Error().Int("status", *status).Str("file", filename).Str("message", result.Error.Message).Msg("Cloudinary rejected upload")
		return "", &UploadError{StatusCode: *status, Body: result.Error.Message}
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload response has no secure_url")
	}

	log.Info().Str("publicId", result.PublicID).Str("file", filename).Msg("Uploaded image to Cloudinary")
	return result.SecureURL, nil
}

// Delete destroys the image with a signed request. Anything other than a
// confirmed "ok" result is an error.
func (c *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return fmt.Errorf("cloudinary API credentials are required to delete images")
	}

	ctx, status := withStatus(ctx)
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("failed to send request to Cloudinary: %w", err)
	}
	if cdnRejected(*status) || result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy error (status %d): %s", *status, result.Error.Message)
	}
	if result.Result != "ok" {
		return fmt.Errorf("%w: %s returned %q", ErrDeleteRejected, publicID, result.Result)
	}
	return nil
}
