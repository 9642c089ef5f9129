package identity

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveByEmail returns the active admin account for the email, or nil
// when no such account exists.
func (r *Repository) FindActiveByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	var user models.AdminUser
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", normalized, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new admin account.
func (r *Repository) Create(ctx context.Context, user *models.AdminUser) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}
