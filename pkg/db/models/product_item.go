package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/money"
)

// ProductItem is one order line. ItemTotal = Price * Quantity, Subtotal equals
// ItemTotal until discounts exist, Total = Subtotal + ShippingTotal where
// ShippingTotal sums the child shipping items. ProductID is nulled when the
// referenced product is deleted; the snapshot fields keep the line meaningful.
type ProductItem struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	ProductID     *uuid.UUID            `gorm:"column:product_id;type:uuid"`
	Name          string                `gorm:"column:name;not null"`
	Price         money.Money           `gorm:"column:price;type:numeric(19,4);not null"`
	Quantity      int                   `gorm:"column:quantity;not null"`
	ItemTotal     money.Money           `gorm:"column:item_total;type:numeric(19,4);not null"`
	Subtotal      money.Money           `gorm:"column:subtotal;type:numeric(19,4);not null"`
	ShippingTotal money.Money           `gorm:"column:shipping_total;type:numeric(19,4);not null"`
	Total         money.Money           `gorm:"column:total;type:numeric(19,4);not null"`
	ShippingItems []ProductShippingItem `gorm:"foreignKey:ProductItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
