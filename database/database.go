package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db             *gorm.DB
	articleRepo    *ArticleRepo
	userRepo       *UserRepo
	credentialRepo *CredentialRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:             db,
		articleRepo:    NewArticleRepo(db),
		userRepo:       NewUserRepo(db),
		credentialRepo: NewCredentialRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ArticleRepo() *ArticleRepo {
	return d.articleRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) CredentialRepo() *CredentialRepo {
	return d.credentialRepo
}

// Transaction runs fn with repositories bound to a single transaction.
// Returning an error from fn rolls everything back.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks that the underlying connection pool is reachable
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
