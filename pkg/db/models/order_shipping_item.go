package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/money"
)

// OrderShippingItem is a shipping line attached to the order itself rather
// than to a product item. ItemTotal = FixedFee + UnitFee * the order's
// quantity basis (the summed quantity of its product items).
type OrderShippingItem struct {
	ID                uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID   `gorm:"column:order_id;type:uuid;not null"`
	ProductShippingID *uuid.UUID  `gorm:"column:product_shipping_id;type:uuid"`
	Name              string      `gorm:"column:name;not null"`
	FixedFee          money.Money `gorm:"column:fixed_fee;type:numeric(19,4);not null"`
	UnitFee           money.Money `gorm:"column:unit_fee;type:numeric(19,4);not null"`
	ItemTotal         money.Money `gorm:"column:item_total;type:numeric(19,4);not null"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
