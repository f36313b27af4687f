package database

import (
	"context"
	"strings"

	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

type CredentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) *CredentialRepo {
	return &CredentialRepo{db}
}

// FindByEmail looks a credential up by its case-folded email
func (r *CredentialRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.WithContext(ctx).First(&cred, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// Add stores a new credential. The email is stored lowercased.
func (r *CredentialRepo) Add(ctx context.Context, cred *models.Credential) error {
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	return r.db.WithContext(ctx).Create(cred).Error
}
