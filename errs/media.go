package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUploadFailed  = errors.New("image upload failed")
	ErrDeleteFailed  = errors.New("image deletion failed")
	ErrMediaDisabled = errors.New("media storage not configured")
)

// NewUploadFailedError wraps a CDN rejection; the upstream status goes in Details
func NewUploadFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUploadFailed,
		Details:    "The media CDN rejected the upload",
		Cause:      cause,
		Field:      "file",
	}
}

func NewDeleteFailedError(publicID string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDeleteFailed,
		Details:    fmt.Sprintf("Could not delete image %s", publicID),
		Cause:      cause,
	}
}

func NewMediaDisabledError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusServiceUnavailable, err: ErrMediaDisabled}
}

func IsUploadFailed(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}
