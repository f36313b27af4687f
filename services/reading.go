package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ReadingService keeps the read and saved lists of readers
type ReadingService struct {
	db  database.Database
	now func() time.Time
}

func NewReadingService(db database.Database) *ReadingService {
	return &ReadingService{db: db, now: time.Now}
}

func notFoundOr(entity, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(entity)
	}
	return errs.NewDatabaseError(op, entity, err)
}

// transactionError passes classified errors through and reports anything
// else, a failed commit for instance, as a transaction failure
func transactionError(operation string, err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewTransactionFailedError(operation, err)
}

// MarkAsRead records the first read of an article by a user and counts it
// as a view. The user row stays locked for the whole transaction, so a
// repeated or concurrent call neither appends twice nor counts twice.
// It reports whether this call was the first read.
func (s *ReadingService) MarkAsRead(ctx context.Context, userID string, articleID uuid.UUID) (bool, error) {
	first := false
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		user, err := tx.UserRepo().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return notFoundOr("user", "find", err)
		}
		if user.HasRead(articleID.String()) {
			return nil
		}

		if err := tx.ArticleRepo().IncrementViews(ctx, articleID); err != nil {
			return notFoundOr("article", "update", err)
		}

		now := s.now()
		user.ReadArticles = append(user.ReadArticles, articleID.String())
		user.LastReadAt = &now
		if err := tx.UserRepo().Update(ctx, user); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}
		first = true
		return nil
	})
	if err != nil {
		return false, transactionError("mark as read", err)
	}
	return first, nil
}

// ToggleSaved adds the article to the saved list, or removes it when it is
// already there, and returns the new state. Removing works for articles
// that no longer exist.
func (s *ReadingService) ToggleSaved(ctx context.Context, userID string, articleID uuid.UUID) (bool, error) {
	saved := false
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		user, err := tx.UserRepo().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return notFoundOr("user", "find", err)
		}

		id := articleID.String()
		if user.HasSaved(id) {
			kept := make([]string, 0, len(user.SavedArticles))
			for _, v := range user.SavedArticles {
				if v != id {
					kept = append(kept, v)
				}
			}
			user.SavedArticles = kept
		} else {
			if _, err := tx.ArticleRepo().FindByID(ctx, articleID); err != nil {
				return notFoundOr("article", "find", err)
			}
			user.SavedArticles = append(user.SavedArticles, id)
			saved = true
		}

		if err := tx.UserRepo().Update(ctx, user); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}
		return nil
	})
	if err != nil {
		return false, transactionError("toggle saved", err)
	}
	return saved, nil
}

// ReaderProfile backs the profile page: stats, the read tab and the saved
// tab. Each tab shows at most database.MaxIDsPerQuery articles.
type ReaderProfile struct {
	User  *models.User        `json:"user"`
	Stats models.ReadingStats `json:"stats"`
	Read  []*models.Article   `json:"readArticles"`
	Saved []*models.Article   `json:"savedArticles"`
}

func (s *ReadingService) Profile(ctx context.Context, userID string) (*ReaderProfile, error) {
	user, err := s.db.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("user", "find", err)
	}

	profile := &ReaderProfile{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile.Read, err = s.firstArticles(gctx, user.ReadArticles)
		return err
	})
	g.Go(func() error {
		var err error
		profile.Saved, err = s.firstArticles(gctx, user.SavedArticles)
		return err
	})
	g.Go(func() error {
		stats, err := s.Stats(gctx, user)
		if err != nil {
			return err
		}
		profile.Stats = *stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

// firstArticles loads the first MaxIDsPerQuery ids in list order, skipping
// ids whose article was deleted.
func (s *ReadingService) firstArticles(ctx context.Context, ids []string) ([]*models.Article, error) {
	if len(ids) > database.MaxIDsPerQuery {
		ids = ids[:database.MaxIDsPerQuery]
	}
	found, err := s.db.ArticleRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "articles", err)
	}

	byID := make(map[string]*models.Article, len(found))
	for _, a := range found {
		byID[a.ID.String()] = a
	}
	out := make([]*models.Article, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Stats derives the reading statistics of a user from every id in the
// read list, fetched in chunks of MaxIDsPerQuery.
func (s *ReadingService) Stats(ctx context.Context, user *models.User) (*models.ReadingStats, error) {
	ids := user.ReadArticles
	var chunks [][]string
	for start := 0; start < len(ids); start += database.MaxIDsPerQuery {
		end := start + database.MaxIDsPerQuery
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}

	minutes := make([]int, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			found, err := s.db.ArticleRepo().FindByIDs(gctx, chunk)
			if err != nil {
				return errs.NewDatabaseError("list", "articles", err)
			}
			for _, a := range found {
				minutes[i] += a.ReadingTime
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.ReadingStats{
		TotalArticles:      len(ids),
		LastReadAt:         user.LastReadAt,
		FavoriteCategories: []string{},
	}
	for _, m := range minutes {
		stats.TotalReadingTime += m
	}
	return stats, nil
}
