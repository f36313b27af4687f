package models

import "time"

// ReadingStats is derived from a user's read set and never persisted
type ReadingStats struct {
	TotalArticles      int        `json:"totalArticles"`
	TotalReadingTime   int        `json:"totalReadingTime"`
	LastReadAt         *time.Time `json:"lastReadAt"`
	FavoriteCategories []string   `json:"favoriteCategories"`
}
