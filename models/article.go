package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlaceholderCoverImage is stored when an article is saved without a cover.
const PlaceholderCoverImage = "/placeholder-article.jpg"

// Article represents a blog article with its publishing metadata
type Article struct {
	ID          uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Content     string                      `json:"content" db:"content" gorm:"type:text;not null"`
	Excerpt     string                      `json:"excerpt" db:"excerpt" gorm:"type:text;not null"`
	CoverImage  string                      `json:"coverImage" db:"cover_image" gorm:"type:text;not null"`
	Author      string                      `json:"author" db:"author" gorm:"type:text;not null"`
	AuthorID    string                      `json:"authorId" db:"author_id" gorm:"type:text;not null;index:idx_article_author_id"`
	CreatedAt   time.Time                   `json:"createdAt" db:"created_at" gorm:"not null;index:idx_article_published_created,priority:2"`
	UpdatedAt   time.Time                   `json:"updatedAt" db:"updated_at" gorm:"not null;autoUpdateTime:false"`
	Published   bool                        `json:"published" db:"published" gorm:"not null;default:false;index:idx_article_published_created,priority:1;index:idx_article_published_views,priority:1"`
	Featured    bool                        `json:"featured" db:"featured" gorm:"not null;default:false"`
	Slug        string                      `json:"slug" db:"slug" gorm:"type:text;not null;index:idx_article_slug"`
	ReadingTime int                         `json:"readingTime" db:"reading_time" gorm:"type:integer;not null;default:0"`
	Tags        datatypes.JSONSlice[string] `json:"tags" db:"tags" gorm:"not null"`
	Views       int                         `json:"views" db:"views" gorm:"type:integer;not null;default:0;index:idx_article_published_views,priority:2"`
}

// BeforeCreate assigns an id when the caller did not provide one
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the JSON column non-null
func (a *Article) BeforeSave(tx *gorm.DB) error {
	if a.Tags == nil {
		a.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// HasTag reports whether the article carries the exact tag
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
