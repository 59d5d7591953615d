package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

// Repository handles order tree persistence. All write paths run on the
// caller's transaction so validation and commit stay atomic.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Items.ShippingItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("ShippingItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		})
}

// FindTreeByIDInOrg loads the full order tree scoped to the organization.
func (r *Repository) FindTreeByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.Order, error) {
	return r.findTree(r.db.WithContext(ctx), id, organizationID)
}

// FindTreeByIDInOrgTx loads the full order tree using the provided transaction.
func (r *Repository) FindTreeByIDInOrgTx(tx *gorm.DB, id, organizationID uuid.UUID) (*models.Order, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	return r.findTree(tx, id, organizationID)
}

func (r *Repository) findTree(db *gorm.DB, id, organizationID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := preloadTree(db).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CodeExistsInOrgTx reports whether another order in the organization
// already uses the code. excludeID skips the order being updated.
func (r *Repository) CodeExistsInOrgTx(tx *gorm.DB, code string, organizationID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	query := tx.Model(&models.Order{}).
		Where("code = ? AND organization_id = ?", code, organizationID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOrg returns a page of order headers for the organization, newest
// first. Items are not preloaded on the list path.
func (r *Repository) ListByOrg(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
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

	var rows []models.Order
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

// CommitTreeTx applies the plan on the provided transaction: reconciliation
// deletes first, then the order row, then every line with an id-keyed
// upsert. Nothing here validates; the plan is already fully checked.
func (r *Repository) CommitTreeTx(tx *gorm.DB, plan commitPlan, isUpdate bool) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}

	if len(plan.deleteItemIDs) > 0 {
		if err := tx.Where("product_item_id IN ?", plan.deleteItemIDs).
			Delete(&models.ProductShippingItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", plan.deleteItemIDs).
			Delete(&models.ProductItem{}).Error; err != nil {
			return err
		}
	}
	if len(plan.deleteItemShippingIDs) > 0 {
		if err := tx.Where("id IN ?", plan.deleteItemShippingIDs).
			Delete(&models.ProductShippingItem{}).Error; err != nil {
			return err
		}
	}
	if len(plan.deleteOrderShippingIDs) > 0 {
		if err := tx.Where("id IN ?", plan.deleteOrderShippingIDs).
			Delete(&models.OrderShippingItem{}).Error; err != nil {
			return err
		}
	}

	order := plan.order
	if isUpdate {
		err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"code":                 order.Code,
				"product_total":        order.ProductTotal,
				"order_shipping_total": order.OrderShippingTotal,
				"total":                order.Total,
			}).Error
		if err != nil {
			return err
		}
	} else {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
	}

	itemUpsert := clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "name", "price", "quantity",
			"item_total", "subtotal", "shipping_total", "total", "updated_at",
		}),
	}
	lineUpsert := clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_shipping_id", "name", "fixed_fee", "unit_fee", "item_total", "updated_at",
		}),
	}
	for i := range order.Items {
		item := &order.Items[i]
		if err := tx.Omit(clause.Associations).Clauses(itemUpsert).Create(item).Error; err != nil {
			return err
		}
		for j := range item.ShippingItems {
			if err := tx.Clauses(lineUpsert).Create(&item.ShippingItems[j]).Error; err != nil {
				return err
			}
		}
	}
	for i := range order.ShippingItems {
		if err := tx.Clauses(lineUpsert).Create(&order.ShippingItems[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// DeleteTreeTx removes the order and its entire item tree. The organization
// check runs before any child rows are touched.
func (r *Repository) DeleteTreeTx(tx *gorm.DB, id, organizationID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}

	var owned int64
	err := tx.Model(&models.Order{}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Count(&owned).Error
	if err != nil {
		return err
	}
	if owned == 0 {
		return gorm.ErrRecordNotFound
	}

	var itemIDs []uuid.UUID
	err = tx.Model(&models.ProductItem{}).
		Where("order_id = ?", id).
		Pluck("id", &itemIDs).Error
	if err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := tx.Where("product_item_id IN ?", itemIDs).
			Delete(&models.ProductShippingItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", itemIDs).
			Delete(&models.ProductItem{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("order_id = ?", id).
		Delete(&models.OrderShippingItem{}).Error; err != nil {
		return err
	}

	result := tx.Where("id = ? AND organization_id = ?", id, organizationID).
		Delete(&models.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
