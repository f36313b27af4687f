package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// DefaultPageSize is the number of articles per listing page
const DefaultPageSize = 9

type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortPopular SortOrder = "popular"
)

// ParseSortOrder falls back to newest for unknown values
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortPopular:
		return SortPopular
	default:
		return SortNewest
	}
}

// Page is one slice of published articles and where the next one starts
type Page struct {
	Articles   []*models.Article
	NextCursor string
	HasMore    bool
}

// Pager fetches successive pages of published articles in a sort order.
// An empty cursor requests the first page.
type Pager interface {
	Page(ctx context.Context, order SortOrder, cursor string, pageSize int) (*Page, error)
}

// NewPager returns the pager named by kind: "keyset" (default) or "overfetch"
func NewPager(kind string, articles *database.ArticleRepo) (Pager, error) {
	switch strings.ToLower(kind) {
	case "", "keyset":
		return &keysetPager{articles: articles}, nil
	case "overfetch":
		return &overfetchPager{articles: articles}, nil
	default:
		return nil, fmt.Errorf("unknown pagination strategy %q", kind)
	}
}

// SortArticles orders articles in place. Equal keys keep their input order.
func SortArticles(articles []*models.Article, order SortOrder) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		switch order {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortPopular:
			return a.Views > b.Views
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// overfetchPager reads twice the page size in storage order, sorts that
// batch in memory and keeps the first page. The cursor is the last stored
// id of the batch whatever the sort order, so articles sorted past the page
// inside a batch are not revisited.
type overfetchPager struct {
	articles *database.ArticleRepo
}

func (p *overfetchPager) Page(ctx context.Context, order SortOrder, cursor string, pageSize int) (*Page, error) {
	raw, err := p.articles.FindPublishedBatch(ctx, cursor, 2*pageSize)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "articles", err)
	}

	sorted := make([]*models.Article, len(raw))
	copy(sorted, raw)
	SortArticles(sorted, order)
	if len(sorted) > pageSize {
		sorted = sorted[:pageSize]
	}

	page := &Page{Articles: sorted, HasMore: len(raw) == 2*pageSize}
	if page.HasMore {
		page.NextCursor = raw[len(raw)-1].ID.String()
	}
	return page, nil
}

// keysetPager lets the database order by the sort key with the id as a
// tiebreak and asks for one extra row to know whether another page exists.
type keysetPager struct {
	articles *database.ArticleRepo
}

type keysetCursor struct {
	Order SortOrder           `json:"o"`
	After database.ArticleKey `json:"k"`
}

func encodeCursor(c keysetCursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string, order SortOrder) (*database.ArticleKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.NewInvalidFieldError("cursor", "malformed cursor")
	}
	var c keysetCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errs.NewInvalidFieldError("cursor", "malformed cursor")
	}
	if c.Order != order {
		return nil, errs.NewInvalidFieldError("cursor", "cursor belongs to another sort order")
	}
	return &c.After, nil
}

func dbOrder(order SortOrder) database.ArticleOrder {
	switch order {
	case SortOldest:
		return database.OrderOldest
	case SortPopular:
		return database.OrderPopular
	default:
		return database.OrderNewest
	}
}

func (p *keysetPager) Page(ctx context.Context, order SortOrder, cursor string, pageSize int) (*Page, error) {
	var after *database.ArticleKey
	if cursor != "" {
		key, err := decodeCursor(cursor, order)
		if err != nil {
			return nil, err
		}
		after = key
	}

	rows, err := p.articles.FindPublishedPage(ctx, dbOrder(order), after, pageSize+1)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "articles", err)
	}

	page := &Page{Articles: rows}
	if len(rows) > pageSize {
		page.Articles = rows[:pageSize]
		page.HasMore = true
		page.NextCursor = encodeCursor(keysetCursor{Order: order, After: database.KeyOf(rows[pageSize-1])})
	}
	return page, nil
}

// ListQuery describes one "load" of the public article list
type ListQuery struct {
	Sort      SortOrder
	Cursor    string
	Search    string
	Tag       string
	KnownTags []string
}

// ListPage is a filtered page plus the tag choices accumulated so far
type ListPage struct {
	Articles   []*models.Article `json:"articles"`
	NextCursor string            `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
	Tags       []string          `json:"tags"`
}

// MatchesSearch is a case-insensitive substring match over title, excerpt and content
func MatchesSearch(a *models.Article, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.Title), term) ||
		strings.Contains(strings.ToLower(a.Excerpt), term) ||
		strings.Contains(strings.ToLower(a.Content), term)
}

// FilterArticles keeps the articles matching the search term and exact tag
func FilterArticles(articles []*models.Article, search, tag string) []*models.Article {
	out := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if !MatchesSearch(a, search) {
			continue
		}
		if tag != "" && !a.HasTag(tag) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UnionTags appends the tags of articles not already in known, keeping the
// order in which they were first seen. The result never loses a known tag.
func UnionTags(known []string, articles []*models.Article) []string {
	seen := make(map[string]bool, len(known))
	out := make([]string, 0, len(known))
	for _, t := range known {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, a := range articles {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// List returns one page of published articles. Search and tag filters run
// on the fetched page, so a filtered page can be shorter than the page size
// while HasMore is still true.
func (s *ArticleService) List(ctx context.Context, q ListQuery) (*ListPage, error) {
	page, err := s.pager.Page(ctx, q.Sort, q.Cursor, s.pageSize)
	if err != nil {
		return nil, err
	}

	return &ListPage{
		Articles:   FilterArticles(page.Articles, q.Search, q.Tag),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Tags:       UnionTags(q.KnownTags, page.Articles),
	}, nil
}
