package services

import (
	"context"
)

// Identity is what an identity provider knows about a signed-in subject
type Identity struct {
	Subject     string  `json:"uid"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// IdentityProvider validates a session token and resolves its subject.
// Invalid or expired tokens return an *errs.ApiErr with status 401.
type IdentityProvider interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}
