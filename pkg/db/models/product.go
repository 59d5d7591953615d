package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/money"
)

// Product is a sellable item owned by one organization. Code is unique within
// the organization, not globally.
type Product struct {
	ID             uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID   `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:products_org_code_key"`
	Code           string      `gorm:"column:code;not null;uniqueIndex:products_org_code_key"`
	Name           string      `gorm:"column:name;not null"`
	Price          money.Money `gorm:"column:price;type:numeric(19,4);not null"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
