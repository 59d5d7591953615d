package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
)

// Repository handles user persistence for the auth surface.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads a user by the normalized email address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return gorm.ErrInvalidData
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}
