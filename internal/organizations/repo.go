package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
)

// Repository handles organization persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to organization operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new organization row.
func (r *Repository) Create(ctx context.Context, dto CreateOrganizationDTO) (*models.Organization, error) {
	org := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// FindByID loads an organization by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateName renames the organization.
func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	org.Name = name
	if err := r.db.WithContext(ctx).Save(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
