package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database.New(db)
}

type articleSeed struct {
	title     string
	published bool
	featured  bool
	age       time.Duration
	views     int
	tags      []string
	minutes   int
}

func seed(t *testing.T, db database.Database, s articleSeed) *models.Article {
	t.Helper()
	a := &models.Article{
		ID:          uuid.New(),
		Title:       s.title,
		Content:     "<p>" + s.title + " body</p>",
		Excerpt:     s.title + " excerpt",
		CoverImage:  models.PlaceholderCoverImage,
		Author:      "Admin",
		AuthorID:    "admin",
		CreatedAt:   testNow.Add(-s.age),
		UpdatedAt:   testNow.Add(-s.age),
		Published:   s.published,
		Featured:    s.featured,
		Slug:        GenerateSlug(s.title),
		ReadingTime: s.minutes,
		Tags:        s.tags,
		Views:       s.views,
	}
	if err := db.ArticleRepo().Add(context.Background(), a); err != nil {
		t.Fatalf("seed %q: %v", s.title, err)
	}
	return a
}

func seedUser(t *testing.T, db database.Database, id string) *models.User {
	t.Helper()
	u := newProfile(&Identity{Subject: id, Email: id + "@example.com", DisplayName: id}, testNow)
	if err := db.UserRepo().Add(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func titlesOf(articles []*models.Article) string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return strings.Join(out, ",")
}

// fakeMedia is an in-memory MediaStore
type fakeMedia struct {
	url       string
	uploadErr error
	deleteErr error
	uploaded  []string
	deleted   []string
}

func (f *fakeMedia) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	return f.url, nil
}

func (f *fakeMedia) Delete(ctx context.Context, publicID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}
