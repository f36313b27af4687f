package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/editor"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	HomeFeaturedLimit = 5
	HomeRecentLimit   = 6
	RelatedLimit      = 3
	DefaultAuthor     = "Admin"
)

type ArticleService struct {
	db       database.Database
	pager    Pager
	pageSize int
	now      func() time.Time
}

func NewArticleService(db database.Database, pager Pager, pageSize int) *ArticleService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ArticleService{db: db, pager: pager, pageSize: pageSize, now: time.Now}
}

func (s *ArticleService) PageSize() int {
	return s.pageSize
}

// DashboardSort orders the admin article table
type DashboardSort string

const (
	DashboardRecent DashboardSort = "recent"
	DashboardOldest DashboardSort = "oldest"
	DashboardTitle  DashboardSort = "title"
	DashboardViews  DashboardSort = "views"
)

type DashboardQuery struct {
	Search string
	Sort   DashboardSort
}

// MatchesDashboardSearch is a case-insensitive substring match over title, excerpt and tags
func MatchesDashboardSearch(a *models.Article, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(a.Title), term) || strings.Contains(strings.ToLower(a.Excerpt), term) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// Dashboard returns every article, drafts included, filtered and sorted in memory
func (s *ArticleService) Dashboard(ctx context.Context, q DashboardQuery) ([]*models.Article, error) {
	all, err := s.db.ArticleRepo().FindAllByCreatedDesc(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "articles", err)
	}

	out := make([]*models.Article, 0, len(all))
	for _, a := range all {
		if MatchesDashboardSearch(a, strings.TrimSpace(q.Search)) {
			out = append(out, a)
		}
	}

	switch q.Sort {
	case DashboardOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case DashboardTitle:
		c := collate.New(language.French, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i].Title, out[j].Title) < 0 })
	case DashboardViews:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	}
	return out, nil
}

// HomePage is the landing page composition
type HomePage struct {
	Featured []*models.Article `json:"featured"`
	Today    *models.Article   `json:"today"`
	Recent   []*models.Article `json:"recent"`
}

// Home loads the featured carousel, the article of the day (the newest one)
// and the recent articles that follow it.
func (s *ArticleService) Home(ctx context.Context) (*HomePage, error) {
	var featured, latest []*models.Article
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		featured, err = s.db.ArticleRepo().FindFeatured(gctx, HomeFeaturedLimit)
		return err
	})
	g.Go(func() error {
		var err error
		latest, err = s.db.ArticleRepo().FindLatestPublished(gctx, HomeRecentLimit+1)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("load", "home articles", err)
	}

	home := &HomePage{Featured: featured, Recent: []*models.Article{}}
	if len(latest) > 0 {
		home.Today = latest[0]
		home.Recent = latest[1:]
	}
	return home, nil
}

// ArticleDetail is an article page with its related articles and, for a
// signed-in reader, whether it is saved and already read.
type ArticleDetail struct {
	Article *models.Article   `json:"article"`
	Related []*models.Article `json:"related"`
	Saved   bool              `json:"saved"`
	Read    bool              `json:"read"`
}

func (s *ArticleService) Detail(ctx context.Context, slug string, session *Session) (*ArticleDetail, error) {
	article, err := s.db.ArticleRepo().FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("article")
		}
		return nil, errs.NewDatabaseError("find", "article", err)
	}

	related, err := s.db.ArticleRepo().FindLatestPublished(ctx, RelatedLimit, article.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "related articles", err)
	}

	detail := &ArticleDetail{Article: article, Related: related}
	if session != nil && session.Profile != nil {
		detail.Saved = session.Profile.HasSaved(article.ID.String())
		detail.Read = session.Profile.HasRead(article.ID.String())
	}
	return detail, nil
}

// Get returns any article, drafts included
func (s *ArticleService) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.db.ArticleRepo().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("article")
		}
		return nil, errs.NewDatabaseError("find", "article", err)
	}
	return article, nil
}

// ArticleInput is the admin form
type ArticleInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Featured   bool     `json:"featured"`
	Published  bool     `json:"published"`
}

// ParseTags splits a comma separated tag field, trimming entries and dropping empty ones
func ParseTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// CleanTags trims tags and drops the empty ones
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks the required fields and returns the sanitized content
func (in *ArticleInput) Validate() (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", errs.NewMissingRequiredFieldError("title")
	}
	doc := editor.Parse(strings.TrimSpace(in.Content))
	if doc.IsEmpty() {
		return "", errs.NewMissingRequiredFieldError("content")
	}
	if strings.TrimSpace(in.Excerpt) == "" {
		return "", errs.NewMissingRequiredFieldError("excerpt")
	}
	return editor.Render(doc), nil
}

// Create stores a new article authored by the session's user
func (s *ArticleService) Create(ctx context.Context, in ArticleInput, author *Session) (*models.Article, error) {
	content, err := in.Validate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{ID: uuid.New(), CreatedAt: now}
	s.fill(article, in, content, author, now)

	if err := s.db.ArticleRepo().Add(ctx, article); err != nil {
		return nil, errs.NewDatabaseError("create", "article", err)
	}
	log.Info().Str("articleId", article.ID.String()).Str("slug", article.Slug).Msg("Article created")
	return article, nil
}

// Update replaces the editable fields of an article. Views and the
// creation time are kept.
func (s *ArticleService) Update(ctx context.Context, id uuid.UUID, in ArticleInput, author *Session) (*models.Article, error) {
	content, err := in.Validate()
	if err != nil {
		return nil, err
	}

	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(article, in, content, author, s.now())

	if err := s.db.ArticleRepo().Update(ctx, article); err != nil {
		return nil, errs.NewDatabaseError("update", "article", err)
	}
	log.Info().Str("articleId", article.ID.String()).Msg("Article updated")
	return article, nil
}

func (s *ArticleService) fill(a *models.Article, in ArticleInput, content string, author *Session, now time.Time) {
	a.Title = strings.TrimSpace(in.Title)
	a.Content = content
	a.Excerpt = strings.TrimSpace(in.Excerpt)
	a.CoverImage = strings.TrimSpace(in.CoverImage)
	if a.CoverImage == "" {
		a.CoverImage = models.PlaceholderCoverImage
	}
	a.Author, a.AuthorID = DefaultAuthor, ""
	if author != nil {
		if author.Profile != nil && author.Profile.DisplayName != "" {
			a.Author = author.Profile.DisplayName
		}
		a.AuthorID = author.UserID()
	}
	a.Slug = GenerateSlug(a.Title)
	if a.Slug == "" {
		a.Slug = a.ID.String()
	}
	a.ReadingTime = CalculateReadingTime(content)
	a.Tags = datatypes.JSONSlice[string](CleanTags(in.Tags))
	a.Featured = in.Featured
	a.Published = in.Published
	a.UpdatedAt = now
}

// Delete removes an article for good. Reader lists keep the dangling id.
func (s *ArticleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.ArticleRepo().Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "article", err)
	}
	log.Info().Str("articleId", id.String()).Msg("Article deleted")
	return nil
}

// SetCover uploads an image and makes it the cover of an article. When the
// upload fails the article keeps its previous cover.
func (s *ArticleService) SetCover(ctx context.Context, id uuid.UUID, media MediaStore, filename string, r io.Reader) (*models.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := media.Upload(ctx, filename, r)
	if err != nil {
		return nil, errs.NewUploadFailedError(err)
	}

	article.CoverImage = url
	article.UpdatedAt = s.now()
	if err := s.db.ArticleRepo().Update(ctx, article); err != nil {
		return nil, errs.NewDatabaseError("update", "article", err)
	}
	return article, nil
}
