package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultDisplayName is given to profiles whose identity carries no name
const DefaultDisplayName = "Utilisateur"

// Session is the signed-in state of one request: who the caller is and
// their reader profile.
type Session struct {
	Identity *Identity
	Profile  *models.User
}

func (s *Session) UserID() string {
	return s.Identity.Subject
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.IsAdmin
}

// SessionManager opens sessions for authenticated identities and creates
// the reader profile on first sign-in.
type SessionManager struct {
	db     database.Database
	mailer *Mailer
	now    func() time.Time
}

// NewSessionManager wires the profile store. mailer may be nil.
func NewSessionManager(db database.Database, mailer *Mailer) *SessionManager {
	return &SessionManager{db: db, mailer: mailer, now: time.Now}
}

// Begin loads the profile of identity, creating it when missing. Two first
// sign-ins racing each other both write the same fresh profile.
func (m *SessionManager) Begin(ctx context.Context, identity *Identity) (*Session, error) {
	profile, err := m.db.UserRepo().FindByID(ctx, identity.Subject)
	if err == nil {
		return &Session{Identity: identity, Profile: profile}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	profile = newProfile(identity, m.now())
	if err := m.db.UserRepo().Add(ctx, profile); err != nil {
		return nil, errs.NewDatabaseError("create", "user", err)
	}
	log.Info().Str("userId", profile.ID).Msg("Created reader profile")

	if m.mailer != nil && profile.Email != "" {
		go m.sendWelcome(context.WithoutCancel(ctx), profile.Email, profile.DisplayName)
	}
	return &Session{Identity: identity, Profile: profile}, nil
}

// End closes a session on sign-out
func (m *SessionManager) End(ctx context.Context, s *Session) {
	if s == nil {
		return
	}
	log.Info().Str("userId", s.UserID()).Msg("Session ended")
}

func (m *SessionManager) sendWelcome(ctx context.Context, email, name string) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := m.mailer.SendWelcome(ctx, email, name); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Failed to send welcome email")
	}
}

func newProfile(identity *Identity, now time.Time) *models.User {
	name := strings.TrimSpace(identity.DisplayName)
	if name == "" {
		name = DefaultDisplayName
	}
	return &models.User{
		ID:            identity.Subject,
		Email:         identity.Email,
		DisplayName:   name,
		PhotoURL:      identity.PhotoURL,
		IsAdmin:       false,
		ReadArticles:  datatypes.JSONSlice[string]{},
		SavedArticles: datatypes.JSONSlice[string]{},
		CreatedAt:     now,
	}
}
