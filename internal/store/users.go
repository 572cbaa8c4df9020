package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/petermazzocco/go-music-api/models"
)

// UserRepository is the credential store.
type UserRepository struct {
	db *gorm.DB
}

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "creating user")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "querying user by email")
	}
	return &user, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, r.db, id)
}

// Update applies the allowed fields and returns the updated user.
func (r *UserRepository) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	return updateColumns[models.User](ctx, r.db, id, update.Columns())
}

func (r *UserRepository) SetImage(ctx context.Context, id, image string) (*models.User, error) {
	return updateColumns[models.User](ctx, r.db, id, map[string]any{"image": image})
}
