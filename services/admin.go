package services

import (
	"context"
	"fmt"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog/log"
)

// AdminSpec describes the administrator account created at startup
type AdminSpec struct {
	Email       string
	Password    string
	DisplayName string
	Subject     string // identity subject for hosted providers
}

// EnsureLocalAdmin signs the admin in, or signs them up on first run, and
// returns their identity
func EnsureLocalAdmin(ctx context.Context, provider *LocalIdentityProvider, spec AdminSpec) (*Identity, error) {
	identity, _, err := provider.SignIn(ctx, spec.Email, spec.Password)
	if err == nil {
		return identity, nil
	}
	if !errs.IsUserNotFound(err) {
		return nil, err
	}
	identity, _, err = provider.SignUp(ctx, spec.Email, spec.Password, spec.DisplayName)
	return identity, err
}

// ProvisionAdmin makes sure identity has a profile and grants it the admin
// flag. This is the only code path that sets the flag.
func ProvisionAdmin(ctx context.Context, db database.Database, sessions *SessionManager, identity *Identity) error {
	if identity == nil || identity.Subject == "" {
		return fmt.Errorf("admin identity has no subject")
	}
	if _, err := sessions.Begin(ctx, identity); err != nil {
		return err
	}
	if err := db.UserRepo().SetAdmin(ctx, identity.Subject, true); err != nil {
		return errs.NewDatabaseError("update", "user", err)
	}
	log.Info().Str("userId", identity.Subject).Str("email", identity.Email).Msg("Administrator provisioned")
	return nil
}
