package services

import (
	"context"
	"fmt"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog/log"
)

// descopeSessions is the session validation part of the Descope client
type descopeSessions interface {
	ValidateSessionWithToken(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

// DescopeIdentityProvider validates session tokens minted by the hosted
// Descope flows. Sign-up and sign-in happen on the hosted pages.
type DescopeIdentityProvider struct {
	sessions descopeSessions
}

func NewDescopeIdentityProvider(projectID string) (*DescopeIdentityProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("DESCOPE_PROJECT_ID is required")
	}
	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to create Descope client: %w", err)
	}
	return &DescopeIdentityProvider{sessions: descopeClient.Auth}, nil
}

func (p *DescopeIdentityProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	ok, sessionToken, err := p.sessions.ValidateSessionWithToken(ctx, token)
	if err != nil || !ok || sessionToken == nil {
		if err != nil {
			log.Debug().Err(err).Msg("Descope rejected session token")
		}
		return nil, errs.NewInvalidTokenError()
	}
	return identityFromDescopeToken(sessionToken), nil
}

func identityFromDescopeToken(t *descope.Token) *Identity {
	identity := &Identity{Subject: t.ID}
	if email, ok := t.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := t.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if picture, ok := t.Claims["picture"].(string); ok && picture != "" {
		identity.PhotoURL = &picture
	}
	return identity
}
