package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

// MaxIDsPerQuery bounds the id list of a single membership query
const MaxIDsPerQuery = 10

var ErrTooManyIDs = errors.New("too many ids in a single query")

// ArticleOrder is a server-side ordering used by keyset pagination
type ArticleOrder string

const (
	OrderNewest  ArticleOrder = "newest"
	OrderOldest  ArticleOrder = "oldest"
	OrderPopular ArticleOrder = "popular"
)

// ArticleKey is the position of an article in a keyset ordering
type ArticleKey struct {
	CreatedAt time.Time `json:"c"`
	Views     int       `json:"v"`
	ID        uuid.UUID `json:"i"`
}

// KeyOf returns the keyset position of an article
func KeyOf(a *models.Article) ArticleKey {
	return ArticleKey{CreatedAt: a.CreatedAt, Views: a.Views, ID: a.ID}
}

type ArticleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) *ArticleRepo {
	return &ArticleRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ArticleRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *ArticleRepo) published(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Article{}).Where("published = ?", true)
}

// FindByID returns an article by its ID, published or not
func (r *ArticleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// FindPublishedBySlug returns the first published article carrying slug
func (r *ArticleRepo) FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.published(ctx).Where("slug = ?", slug).Order("created_at DESC").First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// FindAllByCreatedDesc returns every article, drafts included, newest first
func (r *ArticleRepo) FindAllByCreatedDesc(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&articles).Error
	return articles, err
}

// FindPublishedBatch returns up to limit published articles in storage
// order (id ascending), starting strictly after afterID when it is set.
func (r *ArticleRepo) FindPublishedBatch(ctx context.Context, afterID string, limit int) ([]*models.Article, error) {
	q := r.published(ctx)
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	var articles []*models.Article
	err := q.Order("id ASC").Limit(limit).Find(&articles).Error
	return articles, err
}

// FindPublishedPage returns up to limit published articles ordered by
// order, starting strictly after the after position when it is set.
func (r *ArticleRepo) FindPublishedPage(ctx context.Context, order ArticleOrder, after *ArticleKey, limit int) ([]*models.Article, error) {
	q := r.published(ctx)
	switch order {
	case OrderOldest:
		if after != nil {
			q = q.Where("(created_at > ? OR (created_at = ? AND id > ?))", after.CreatedAt, after.CreatedAt, after.ID)
		}
		q = q.Order("created_at ASC").Order("id ASC")
	case OrderPopular:
		if after != nil {
			q = q.Where("(views < ? OR (views = ? AND id < ?))", after.Views, after.Views, after.ID)
		}
		q = q.Order("views DESC").Order("id DESC")
	default:
		if after != nil {
			q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", after.CreatedAt, after.CreatedAt, after.ID)
		}
		q = q.Order("created_at DESC").Order("id DESC")
	}

	var articles []*models.Article
	err := q.Limit(limit).Find(&articles).Error
	return articles, err
}

// FindFeatured returns the newest published featured articles
func (r *ArticleRepo) FindFeatured(ctx context.Context, limit int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.published(ctx).Where("featured = ?", true).
		Order("created_at DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

// FindLatestPublished returns the newest published articles, skipping exclude
func (r *ArticleRepo) FindLatestPublished(ctx context.Context, limit int, exclude ...uuid.UUID) ([]*models.Article, error) {
	q := r.published(ctx)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var articles []*models.Article
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

// FindByIDs returns the existing articles among ids. Malformed ids are
// ignored. At most MaxIDsPerQuery ids are accepted per call.
func (r *ArticleRepo) FindByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	if len(ids) > MaxIDsPerQuery {
		return nil, ErrTooManyIDs
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}
	if len(parsed) == 0 {
		return []*models.Article{}, nil
	}

	var articles []*models.Article
	err := r.db.WithContext(ctx).Where("id IN ?", parsed).Find(&articles).Error
	return articles, err
}

// Add inserts a new article into the database
func (r *ArticleRepo) Add(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// Update writes the editable columns of an existing article. The view
// counter and creation time are never overwritten.
func (r *ArticleRepo) Update(ctx context.Context, article *models.Article) error {
	res := r.db.WithContext(ctx).Model(article).
		Select("*").
		Omit("id", "views", "created_at").
		Updates(article)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an article by id. Deleting a missing article is not an error.
func (r *ArticleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Article{}, "id = ?", id).Error
}

// IncrementViews adds one to the view counter without reading it first
func (r *ArticleRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
