package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password sign-up accepts
const MinPasswordLength = 6

const localTokenIssuer = "blog-backend"

type localClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// LocalIdentityProvider signs readers up and in with email and password,
// stores bcrypt hashes and issues HS256 session tokens.
type LocalIdentityProvider struct {
	db     database.Database
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewLocalIdentityProvider(db database.Database, secret string, ttl time.Duration) *LocalIdentityProvider {
	return &LocalIdentityProvider{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errs.NewInvalidEmailError()
	}
	return strings.ToLower(email), nil
}

// SignUp creates a credential and returns the new identity with a session token
func (p *LocalIdentityProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, "", err
	}
	if len([]rune(password)) < MinPasswordLength {
		return nil, "", errs.NewWeakPasswordError("Password should be at least 6 characters")
	}

	if _, err := p.db.CredentialRepo().FindByEmail(ctx, email); err == nil {
		return nil, "", errs.NewEmailInUseError()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errs.NewDatabaseError("find", "credential", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, "", errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	cred := &models.Credential{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    p.now(),
	}
	if err := p.db.CredentialRepo().Add(ctx, cred); err != nil {
		if dbErr := errs.NewDatabaseError("create", "credential", err); errs.IsAlreadyExists(dbErr) {
			return nil, "", errs.NewEmailInUseError()
		}
		return nil, "", errs.NewDatabaseError("create", "credential", err)
	}

	log.Info().Str("userId", cred.UserID).Msg("Registered local credential")
	identity := identityFromCredential(cred)
	token, err := p.IssueToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// SignIn checks the password and returns the identity with a fresh session token
func (p *LocalIdentityProvider) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, "", err
	}

	cred, err := p.db.CredentialRepo().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errs.NewUserNotFoundError()
		}
		return nil, "", errs.NewDatabaseError("find", "credential", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, "", errs.NewWrongPasswordError()
	}

	identity := identityFromCredential(cred)
	token, err := p.IssueToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// IssueToken signs a session token for identity
func (p *LocalIdentityProvider) IssueToken(identity *Identity) (string, error) {
	now := p.now()
	claims := localClaims{
		Email: identity.Email,
		Name:  identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    localTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("failed to sign session token", err)
	}
	return signed, nil
}

// Authenticate validates a token issued by this provider
func (p *LocalIdentityProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	claims := &localClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewExpiredTokenError()
		}
		return nil, errs.NewInvalidTokenError()
	}
	if claims.Subject == "" {
		return nil, errs.NewInvalidTokenError()
	}

	return &Identity{Subject: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
}

func identityFromCredential(cred *models.Credential) *Identity {
	return &Identity{Subject: cred.UserID, Email: cred.Email, DisplayName: cred.DisplayName}
}
