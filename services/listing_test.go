package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

func TestSortArticlesPopularIsStable(t *testing.T) {
	articles := []*models.Article{
		{Title: "a", Views: 3},
		{Title: "b", Views: 10},
		{Title: "c", Views: 3},
		{Title: "d", Views: 0},
		{Title: "e", Views: 10},
	}
	SortArticles(articles, SortPopular)
	if got := titlesOf(articles); got != "b,e,a,c,d" {
		t.Fatalf("popular order = %s", got)
	}
}

func TestSortArticlesByDate(t *testing.T) {
	articles := []*models.Article{
		{Title: "mid", CreatedAt: testNow.Add(-2 * time.Hour)},
		{Title: "new", CreatedAt: testNow},
		{Title: "old", CreatedAt: testNow.Add(-5 * time.Hour)},
	}
	SortArticles(articles, SortNewest)
	if got := titlesOf(articles); got != "new,mid,old" {
		t.Fatalf("newest = %s", got)
	}
	SortArticles(articles, SortOldest)
	if got := titlesOf(articles); got != "old,mid,new" {
		t.Fatalf("oldest = %s", got)
	}
}

func TestOverfetchHasMoreBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("exactly twice the page size", func(t *testing.T) {
		db := openTestDB(t)
		for i := 0; i < 4; i++ {
			seed(t, db, articleSeed{title: string(rune('A' + i)), published: true, age: time.Duration(i) * time.Hour})
		}
		pager, _ := NewPager("overfetch", db.ArticleRepo())
		svc := NewArticleService(db, pager, 2)

		first, err := svc.List(ctx, ListQuery{Sort: SortNewest})
		if err != nil {
			t.Fatal(err)
		}
		if !first.HasMore || len(first.Articles) != 2 || first.NextCursor == "" {
			t.Fatalf("first page = %+v", first)
		}

		next, err := svc.List(ctx, ListQuery{Sort: SortNewest, Cursor: first.NextCursor})
		if err != nil {
			t.Fatal(err)
		}
		if next.HasMore || len(next.Articles) != 0 {
			t.Fatalf("second page = %+v", next)
		}
	})

	t.Run("one short of the threshold", func(t *testing.T) {
		db := openTestDB(t)
		for i := 0; i < 3; i++ {
			seed(t, db, articleSeed{title: string(rune('A' + i)), published: true, age: time.Duration(i) * time.Hour})
		}
		pager, _ := NewPager("overfetch", db.ArticleRepo())
		svc := NewArticleService(db, pager, 2)

		page, err := svc.List(ctx, ListQuery{Sort: SortNewest})
		if err != nil {
			t.Fatal(err)
		}
		if page.HasMore || page.NextCursor != "" {
			t.Fatalf("expected last page, got %+v", page)
		}
		if got := titlesOf(page.Articles); got != "A,B" {
			t.Fatalf("page = %s", got)
		}
	})
}

func TestKeysetPagesAreExactAndOrdered(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	views := []int{5, 1, 9, 5, 0}
	for i, v := range views {
		seed(t, db, articleSeed{title: string(rune('A' + i)), published: true, age: time.Duration(i) * time.Hour, views: v})
	}
	seed(t, db, articleSeed{title: "Draft", published: false, views: 100})

	pager, err := NewPager("keyset", db.ArticleRepo())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewArticleService(db, pager, 2)

	collect := func(order SortOrder) (string, []bool) {
		var all []*models.Article
		var more []bool
		cursor := ""
		for {
			page, err := svc.List(ctx, ListQuery{Sort: order, Cursor: cursor})
			if err != nil {
				t.Fatal(err)
			}
			all = append(all, page.Articles...)
			more = append(more, page.HasMore)
			if !page.HasMore {
				break
			}
			cursor = page.NextCursor
		}
		return titlesOf(all), more
	}

	got, more := collect(SortNewest)
	if got != "A,B,C,D,E" || !reflect.DeepEqual(more, []bool{true, true, false}) {
		t.Fatalf("newest = %s %v", got, more)
	}
	if got, _ := collect(SortOldest); got != "E,D,C,B,A" {
		t.Fatalf("oldest = %s", got)
	}
	if got, _ := collect(SortPopular); len(got) != len("C,A,D,B,E") || got[:2] != "C," || got[len(got)-3:] != "B,E" {
		t.Fatalf("popular = %s", got)
	}
}

func TestKeysetRejectsForeignCursor(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	for i := 0; i < 3; i++ {
		seed(t, db, articleSeed{title: string(rune('A' + i)), published: true, age: time.Duration(i) * time.Hour})
	}
	pager, _ := NewPager("", db.ArticleRepo())
	svc := NewArticleService(db, pager, 1)

	page, err := svc.List(ctx, ListQuery{Sort: SortNewest})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(ctx, ListQuery{Sort: SortPopular, Cursor: page.NextCursor}); !errs.IsInvalidFieldError(err) {
		t.Fatalf("expected invalid cursor error, got %v", err)
	}
	if _, err := svc.List(ctx, ListQuery{Sort: SortNewest, Cursor: "%%%"}); !errs.IsInvalidFieldError(err) {
		t.Fatalf("expected malformed cursor error, got %v", err)
	}
}

func TestListFiltersAfterPagingAndGrowsTags(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seed(t, db, articleSeed{title: "Go tips", published: true, tags: []string{"go", "dev"}})
	seed(t, db, articleSeed{title: "Cooking", published: true, age: time.Hour, tags: []string{"food"}})

	pager, _ := NewPager("keyset", db.ArticleRepo())
	svc := NewArticleService(db, pager, DefaultPageSize)

	page, err := svc.List(ctx, ListQuery{Sort: SortNewest, Tag: "food", KnownTags: []string{"travel"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := titlesOf(page.Articles); got != "Cooking" {
		t.Fatalf("tag filter = %s", got)
	}
	if !reflect.DeepEqual(page.Tags, []string{"travel", "go", "dev", "food"}) {
		t.Fatalf("tags = %v", page.Tags)
	}

	page, err = svc.List(ctx, ListQuery{Sort: SortNewest, Search: "TIPS BODY"})
	if err != nil {
		t.Fatal(err)
	}
	if got := titlesOf(page.Articles); got != "Go tips" {
		t.Fatalf("search = %s", got)
	}
}

func TestParseSortOrderAndPagerKinds(t *testing.T) {
	if ParseSortOrder("Popular") != SortPopular || ParseSortOrder("bogus") != SortNewest {
		t.Fatal("ParseSortOrder mismatch")
	}
	if _, err := NewPager("offset", nil); err == nil {
		t.Fatal("expected unknown pager error")
	}
}
