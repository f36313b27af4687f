package models

import "time"

// Credential holds the email/password login of the local identity provider
type Credential struct {
	UserID       string    `json:"userId" db:"user_id" gorm:"type:text;primaryKey;not null"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_credential_email"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	DisplayName  string    `json:"displayName" db:"display_name" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
}
