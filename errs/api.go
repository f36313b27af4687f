// Package errs holds the error values handlers turn into HTTP responses.
// Every ApiErr carries its status code; sentinel errors let callers
// classify failures with errors.Is without caring about the status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest  = errors.New("malformed request")
	ErrCORSBlocked = errors.New("request blocked by CORS policy")
)

// ApiErr is an error with the HTTP status it should be answered with
type ApiErr struct {
	StatusCode int
	err        error
	Details    string // shown to the client next to the message
	Field      string // offending input field, for validation errors
	Cause      error  // logged, never sent to the client
}

func (e *ApiErr) Error() string {
	if e.Details == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.Details
}

// GetFullError follows the Cause chain: "outer -> inner -> root"
func (e *ApiErr) GetFullError() string {
	if e.Cause == nil {
		return e.Error()
	}
	var inner *ApiErr
	if errors.As(e.Cause, &inner) {
		return e.Error() + " -> " + inner.GetFullError()
	}
	return e.Error() + " -> " + e.Cause.Error()
}

// Unwrap exposes the sentinel so errors.Is matches ApiErr values
func (e *ApiErr) Unwrap() error {
	return e.err
}

func NewBadRequestError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: fmt.Errorf("%s: %w", message, ErrBadRequest)}
}

// NewInternalErrorWithCause hides cause from the client behind message
func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        errors.New(message),
		Cause:      cause,
	}
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    fmt.Sprintf("Origin '%s' is not allowed by CORS policy", origin),
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrMaxBodySizeExceeded  = errors.New("max body size exceeded")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body exceeds %d bytes", maxSize),
		Field:      "body_size",
	}
}

func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}
