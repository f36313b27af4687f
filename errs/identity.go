package errs

import (
	"errors"
	"net/http"
)

// Identity-provider failures surfaced on sign-up and sign-in
var (
	ErrUserNotFound  = errors.New("no account found with this email address")
	ErrWrongPassword = errors.New("incorrect password")
	ErrEmailInUse    = errors.New("email address already in use")
	ErrWeakPassword  = errors.New("password is too weak")
	ErrInvalidEmail  = errors.New("invalid email address")
)

func NewUserNotFoundError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: ErrUserNotFound, Field: "email"}
}

func NewWrongPasswordError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrWrongPassword, Field: "password"}
}

func NewEmailInUseError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: ErrEmailInUse, Field: "email"}
}

func NewWeakPasswordError(details string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrWeakPassword, Details: details, Field: "password"}
}

func NewInvalidEmailError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrInvalidEmail, Field: "email"}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsWrongPassword(err error) bool {
	return errors.Is(err, ErrWrongPassword)
}

func IsEmailInUse(err error) bool {
	return errors.Is(err, ErrEmailInUse)
}

func IsWeakPassword(err error) bool {
	return errors.Is(err, ErrWeakPassword)
}

func IsInvalidEmail(err error) bool {
	return errors.Is(err, ErrInvalidEmail)
}
