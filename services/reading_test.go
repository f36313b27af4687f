package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMarkAsReadCountsOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedUser(t, db, "reader")
	article := seed(t, db, articleSeed{title: "Once", published: true, views: 4})

	svc := NewReadingService(db)
	svc.now = func() time.Time { return testNow }

	for i, wantFirst := range []bool{true, false} {
		first, err := svc.MarkAsRead(ctx, "reader", article.ID)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if first != wantFirst {
			t.Fatalf("call %d: first = %v", i, first)
		}
	}

	stored, _ := db.ArticleRepo().FindByID(ctx, article.ID)
	if stored.Views != 5 {
		t.Errorf("views = %d, want 5", stored.Views)
	}
	user, _ := db.UserRepo().FindByID(ctx, "reader")
	if len(user.ReadArticles) != 1 || user.LastReadAt == nil || !user.LastReadAt.Equal(testNow) {
		t.Errorf("user = %+v", user)
	}
}

func TestMarkAsReadMissingArticleChangesNothing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedUser(t, db, "reader")
	svc := NewReadingService(db)

	if _, err := svc.MarkAsRead(ctx, "reader", uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	user, _ := db.UserRepo().FindByID(ctx, "reader")
	if len(user.ReadArticles) != 0 || user.LastReadAt != nil {
		t.Fatalf("user changed: %+v", user)
	}

	if _, err := svc.MarkAsRead(ctx, "ghost", uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
}

func TestToggleSaved(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedUser(t, db, "reader")
	article := seed(t, db, articleSeed{title: "Keep", published: true})
	svc := NewReadingService(db)

	for i, want := range []bool{true, false, true} {
		saved, err := svc.ToggleSaved(ctx, "reader", article.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if saved != want {
			t.Fatalf("toggle %d: saved = %v", i, saved)
		}
	}

	if _, err := svc.ToggleSaved(ctx, "reader", uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("saving a missing article: expected not found, got %v", err)
	}

	// a saved article deleted afterwards can still be unsaved
	if err := db.ArticleRepo().Delete(ctx, article.ID); err != nil {
		t.Fatal(err)
	}
	saved, err := svc.ToggleSaved(ctx, "reader", article.ID)
	if err != nil || saved {
		t.Fatalf("unsave dangling: saved=%v err=%v", saved, err)
	}
	user, _ := db.UserRepo().FindByID(ctx, "reader")
	if len(user.SavedArticles) != 0 {
		t.Fatalf("saved = %v", user.SavedArticles)
	}
}

func TestProfileTabsAndStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	user := seedUser(t, db, "reader")

	var ids []string
	for i := 0; i < 12; i++ {
		a := seed(t, db, articleSeed{title: fmt.Sprintf("A%02d", i), published: true, minutes: i + 1})
		ids = append(ids, a.ID.String())
	}
	deleted := seed(t, db, articleSeed{title: "Deleted", published: true, minutes: 50})
	ids = append([]string{deleted.ID.String()}, ids...)
	if err := db.ArticleRepo().Delete(ctx, deleted.ID); err != nil {
		t.Fatal(err)
	}

	user.ReadArticles = ids
	user.SavedArticles = []string{ids[3], ids[1]}
	user.LastReadAt = &testNow
	if err := db.UserRepo().Update(ctx, user); err != nil {
		t.Fatal(err)
	}

	profile, err := NewReadingService(db).Profile(ctx, "reader")
	if err != nil {
		t.Fatal(err)
	}

	// 13 ids, one dangling: the read tab shows the first ten that still exist
	if len(profile.Read) != 9 || profile.Read[0].Title != "A00" || profile.Read[8].Title != "A08" {
		t.Errorf("read tab = %s", titlesOf(profile.Read))
	}
	if got := titlesOf(profile.Saved); got != "A02,A00" {
		t.Errorf("saved tab = %s", got)
	}

	stats := profile.Stats
	if stats.TotalArticles != 13 {
		t.Errorf("total articles = %d", stats.TotalArticles)
	}
	if stats.TotalReadingTime != 78 {
		t.Errorf("total reading time = %d, want 78", stats.TotalReadingTime)
	}
	if stats.LastReadAt == nil || stats.FavoriteCategories == nil || len(stats.FavoriteCategories) != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReadingReportsTransactionFailures(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:svc_closed?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.Close()

	svc := NewReadingService(database.New(gdb))
	if _, err := svc.MarkAsRead(context.Background(), "reader", uuid.New()); !errs.IsTransactionFailedError(err) {
		t.Fatalf("MarkAsRead on a closed database = %v, want transaction failure", err)
	}
	if _, err := svc.ToggleSaved(context.Background(), "reader", uuid.New()); !errs.IsTransactionFailedError(err) {
		t.Fatalf("ToggleSaved on a closed database = %v, want transaction failure", err)
	}
}

func TestTransactionErrorKeepsClassifiedErrors(t *testing.T) {
	notFound := errs.NewNotFound("user")
	if got := transactionError("mark as read", notFound); got != error(notFound) {
		t.Fatalf("classified error replaced by %v", got)
	}
	if got := transactionError("mark as read", errors.New("commit failed")); !errs.IsTransactionFailedError(got) {
		t.Fatalf("raw error = %v, want transaction failure", got)
	}
}
