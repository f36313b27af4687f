package database

import (
	"context"

	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns the profile of the identity subject id
func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate is FindByID holding a row lock until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *UserRepo) FindByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Add inserts a profile, overwriting a concurrently created one for the same id
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(user).Error
}

// Update saves every column of an existing profile
func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SetAdmin flips the admin flag. Only startup provisioning calls this.
func (r *UserRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
