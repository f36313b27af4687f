package errs

import (
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestGetFullErrorFollowsCauses(t *testing.T) {
	root := errors.New("disk full")
	inner := NewInternalErrorWithCause("failed to write", root)
	outer := NewTransactionFailedError("save", inner)

	want := "transaction failed: Transaction failed during save -> failed to write -> disk full"
	if got := outer.GetFullError(); got != want {
		t.Fatalf("GetFullError = %q, want %q", got, want)
	}
	if !IsTransactionFailedError(outer) {
		t.Fatal("sentinel lost through Unwrap")
	}
}

func TestNewDatabaseErrorClassifies(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		is     error
	}{
		{"missing row", gorm.ErrRecordNotFound, http.StatusNotFound, ErrNotFound},
		{"sqlite unique", errors.New("UNIQUE constraint failed: credentials.email"), http.StatusConflict, ErrAlreadyExists},
		{"postgres unique", errors.New(`duplicate key value violates unique constraint "idx_email"`), http.StatusConflict, ErrAlreadyExists},
		{"connection", errors.New("connection refused"), http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"other", errors.New("syntax error"), http.StatusInternalServerError, ErrDatabaseQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "article", tt.cause)
			if err.StatusCode != tt.status || !errors.Is(err, tt.is) {
				t.Fatalf("got %d %v", err.StatusCode, err)
			}
		})
	}

	classified := NewNotFound("user")
	if got := NewDatabaseError("find", "user", classified); got != classified {
		t.Fatalf("already classified error was rewrapped: %v", got)
	}
}
