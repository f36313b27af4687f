package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the reader profile keyed by the identity-provider subject.
// IsAdmin is only ever set by startup provisioning.
type User struct {
	ID            string                      `json:"uid" db:"id" gorm:"type:text;primaryKey;not null"`
	Email         string                      `json:"email" db:"email" gorm:"type:text;not null"`
	DisplayName   string                      `json:"displayName" db:"display_name" gorm:"type:text;not null"`
	PhotoURL      *string                     `json:"photoURL,omitempty" db:"photo_url" gorm:"type:text"`
	IsAdmin       bool                        `json:"isAdmin" db:"is_admin" gorm:"not null;default:false"`
	ReadArticles  datatypes.JSONSlice[string] `json:"readArticles" db:"read_articles" gorm:"not null"`
	SavedArticles datatypes.JSONSlice[string] `json:"savedArticles" db:"saved_articles" gorm:"not null"`
	LastReadAt    *time.Time                  `json:"lastReadAt,omitempty" db:"last_read_at"`
	CreatedAt     time.Time                   `json:"createdAt" db:"created_at" gorm:"not null"`
}

// BeforeSave keeps the JSON columns non-null
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.ReadArticles == nil {
		u.ReadArticles = datatypes.JSONSlice[string]{}
	}
	if u.SavedArticles == nil {
		u.SavedArticles = datatypes.JSONSlice[string]{}
	}
	return nil
}

// HasRead reports whether articleID is in the read set
func (u *User) HasRead(articleID string) bool {
	return containsID(u.ReadArticles, articleID)
}

// HasSaved reports whether articleID is in the saved set
func (u *User) HasSaved(articleID string) bool {
	return containsID(u.SavedArticles, articleID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
