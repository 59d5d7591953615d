package shippings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

// Repository handles fee schedule persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to fee schedule operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new fee schedule row.
func (r *Repository) Create(ctx context.Context, dto CreateShippingDTO) (*models.ProductShipping, error) {
	shipping := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(shipping).Error; err != nil {
		return nil, err
	}
	return shipping, nil
}

// FindByIDInOrg loads a fee schedule by id scoped to the organization.
func (r *Repository) FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.ProductShipping, error) {
	var shipping models.ProductShipping
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&shipping).Error
	if err != nil {
		return nil, err
	}
	return &shipping, nil
}

// ListByOrg returns a page of fee schedules for the organization, newest first.
func (r *Repository) ListByOrg(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]models.ProductShipping, string, error) {
	query := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ProductShipping
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// Update saves the provided fee schedule.
func (r *Repository) Update(ctx context.Context, shipping *models.ProductShipping) error {
	if shipping == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Save(shipping).Error
}

// ReplaceProducts replaces the set of products the schedule applies to.
func (r *Repository) ReplaceProducts(ctx context.Context, shipping *models.ProductShipping, products []models.Product) error {
	if shipping == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Model(shipping).Association("Products").Replace(products)
}

// Delete removes a fee schedule scoped to the organization. Dependent
// shipping lines keep their snapshot fields; the FK is set to null.
func (r *Repository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Delete(&models.ProductShipping{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
