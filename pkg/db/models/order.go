package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/money"
)

// Order is the root of the three-level aggregate. Every monetary column stores
// a value that was recomputed and cross-checked server-side before commit:
// ProductTotal is the sum of item totals, Total adds the order-level shipping.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID     uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:orders_org_code_key"`
	Code               string              `gorm:"column:code;not null;uniqueIndex:orders_org_code_key"`
	ProductTotal       money.Money         `gorm:"column:product_total;type:numeric(19,4);not null"`
	OrderShippingTotal money.Money         `gorm:"column:order_shipping_total;type:numeric(19,4);not null"`
	Total              money.Money         `gorm:"column:total;type:numeric(19,4);not null"`
	Items              []ProductItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingItems      []OrderShippingItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
