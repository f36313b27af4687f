package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken     = errors.New("missing access token")
	ErrExpiredToken     = errors.New("expired access token")
	ErrInvalidToken     = errors.New("invalid access token")
	ErrInsufficientRole = errors.New("insufficient role")
)

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrExpiredToken,
		Details:    "Access token has expired",
		Field:      "authorization",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Invalid access token",
		Field:      "authorization",
	}
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrInsufficientRole,
		Details:    fmt.Sprintf("Insufficient role. Required: %s", requiredRole),
		Field:      "authorization",
	}
}

func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
