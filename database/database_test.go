package database_test

import (
	"context"
	"errors"
	"fmt"
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

func openTestDB(t *testing.T) database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedArticle(t *testing.T, d database.Database, title string, published bool, age time.Duration, views int) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:      title,
		Content:    "<p>" + title + "</p>",
		Excerpt:    title,
		CoverImage: models.PlaceholderCoverImage,
		Author:     "Admin",
		AuthorID:   "admin",
		CreatedAt:  base.Add(-age),
		UpdatedAt:  base.Add(-age),
		Published:  published,
		Slug:       strings.ToLower(title),
		Views:      views,
	}
	if err := d.ArticleRepo().Add(context.Background(), a); err != nil {
		t.Fatalf("add article %q: %v", title, err)
	}
	return a
}

func titles(articles []*models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestArticleRepoAddAssignsIDAndTags(t *testing.T) {
	d := openTestDB(t)
	a := seedArticle(t, d, "First", true, 0, 0)
	if a.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}

	got, err := d.ArticleRepo().FindByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", got.Tags)
	}
}

func TestFindPublishedBySlugIgnoresDrafts(t *testing.T) {
	d := openTestDB(t)
	seedArticle(t, d, "Draft", false, 0, 0)

	_, err := d.ArticleRepo().FindPublishedBySlug(context.Background(), "draft")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestFindPublishedPageKeyset(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	seedArticle(t, d, "A", true, 1*time.Hour, 5)
	seedArticle(t, d, "B", true, 2*time.Hour, 50)
	seedArticle(t, d, "C", true, 3*time.Hour, 1)
	seedArticle(t, d, "Hidden", false, 0, 100)

	first, err := d.ArticleRepo().FindPublishedPage(ctx, database.OrderNewest, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(titles(first), ","); got != "A,B" {
		t.Fatalf("first page = %s", got)
	}

	key := database.KeyOf(first[len(first)-1])
	second, err := d.ArticleRepo().FindPublishedPage(ctx, database.OrderNewest, &key, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(titles(second), ","); got != "C" {
		t.Fatalf("second page = %s", got)
	}

	popular, err := d.ArticleRepo().FindPublishedPage(ctx, database.OrderPopular, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(titles(popular), ","); got != "B,A,C" {
		t.Fatalf("popular = %s", got)
	}

	oldest, err := d.ArticleRepo().FindPublishedPage(ctx, database.OrderOldest, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(titles(oldest), ","); got != "C,B,A" {
		t.Fatalf("oldest = %s", got)
	}
}

func TestFindPublishedBatchFollowsIDOrder(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedArticle(t, d, fmt.Sprintf("P%d", i), true, time.Duration(i)*time.Hour, 0)
	}

	first, err := d.ArticleRepo().FindPublishedBatch(ctx, "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3, got %d", len(first))
	}
	rest, err := d.ArticleRepo().FindPublishedBatch(ctx, first[2].ID.String(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2, got %d", len(rest))
	}
	for _, a := range rest {
		if a.ID.String() <= first[2].ID.String() {
			t.Errorf("batch not strictly after cursor: %s", a.ID)
		}
	}
}

func TestFindByIDsCap(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	a := seedArticle(t, d, "One", true, 0, 0)

	got, err := d.ArticleRepo().FindByIDs(ctx, []string{a.ID.String(), "not-a-uuid", uuid.NewString()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("unexpected result %v", titles(got))
	}

	ids := make([]string, database.MaxIDsPerQuery+1)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	if _, err := d.ArticleRepo().FindByIDs(ctx, ids); !errors.Is(err, database.ErrTooManyIDs) {
		t.Fatalf("expected ErrTooManyIDs, got %v", err)
	}
}

func TestIncrementViews(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	a := seedArticle(t, d, "Counted", true, 0, 7)

	if err := d.ArticleRepo().IncrementViews(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := d.ArticleRepo().FindByID(ctx, a.ID)
	if got.Views != 8 {
		t.Fatalf("views = %d, want 8", got.Views)
	}

	if err := d.ArticleRepo().IncrementViews(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for missing article, got %v", err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := d.Transaction(ctx, func(tx database.Database) error {
		if err := tx.UserRepo().Add(ctx, &models.User{ID: "u1", Email: "u1@example.com", DisplayName: "U"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := d.UserRepo().FindByID(ctx, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("user should not exist after rollback, got %v", err)
	}
}

func TestUserRepoLockAndAdmin(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	if err := d.UserRepo().Add(ctx, &models.User{ID: "u2", Email: "u2@example.com", DisplayName: "U"}); err != nil {
		t.Fatal(err)
	}

	err := d.Transaction(ctx, func(tx database.Database) error {
		u, err := tx.UserRepo().FindByIDForUpdate(ctx, "u2")
		if err != nil {
			return err
		}
		u.ReadArticles = append(u.ReadArticles, "x")
		return tx.UserRepo().Update(ctx, u)
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.UserRepo().SetAdmin(ctx, "u2", true); err != nil {
		t.Fatal(err)
	}
	u, err := d.UserRepo().FindByID(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsAdmin || len(u.ReadArticles) != 1 || u.SavedArticles == nil {
		t.Fatalf("unexpected user %+v", u)
	}

	if err := d.UserRepo().SetAdmin(ctx, "missing", true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCredentialEmailIsCaseInsensitive(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	if err := d.CredentialRepo().Add(ctx, &models.Credential{UserID: "u3", Email: " Reader@Example.com", PasswordHash: "h", DisplayName: "R"}); err != nil {
		t.Fatal(err)
	}
	got, err := d.CredentialRepo().FindByEmail(ctx, "reader@EXAMPLE.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u3" {
		t.Fatalf("unexpected credential %+v", got)
	}
	if err := d.CredentialRepo().Add(ctx, &models.Credential{UserID: "u4", Email: "reader@example.com", PasswordHash: "h"}); err == nil {
		t.Fatal("expected unique violation")
	}
}

func TestArticleUpdateKeepsViews(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	a := seedArticle(t, d, "Before", true, 0, 3)

	if err := d.ArticleRepo().IncrementViews(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	a.Title = "After"
	a.Featured = false
	a.Views = 0
	a.UpdatedAt = base.Add(time.Hour)
	if err := d.ArticleRepo().Update(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := d.ArticleRepo().FindByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "After" || got.Views != 4 {
		t.Fatalf("unexpected article title=%q views=%d", got.Title, got.Views)
	}
	if !got.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("updated_at = %v, want the caller's timestamp", got.UpdatedAt)
	}

	missing := &models.Article{ID: uuid.New(), Title: "ghost"}
	if err := d.ArticleRepo().Update(ctx, missing); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
