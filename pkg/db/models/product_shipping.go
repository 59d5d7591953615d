package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avelarde/merchantry-backend/pkg/money"
)

// ProductShipping is a named fee schedule: a fixed fee plus a per-unit fee,
// restricted to a set of zone codes, optionally limited to specific products.
type ProductShipping struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID      `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:product_shippings_org_code_key"`
	Code           string         `gorm:"column:code;not null;uniqueIndex:product_shippings_org_code_key"`
	Name           string         `gorm:"column:name;not null"`
	FixedFee       money.Money    `gorm:"column:fixed_fee;type:numeric(19,4);not null"`
	UnitFee        money.Money    `gorm:"column:unit_fee;type:numeric(19,4);not null"`
	Zones          pq.StringArray `gorm:"column:zones;type:text[];not null;default:ARRAY[]::text[]"`
	Products       []Product      `gorm:"many2many:product_shipping_products"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
