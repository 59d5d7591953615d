package shippings

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/money"
)

// ShippingDTO exposes fee schedule data in API responses.
type ShippingDTO struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	FixedFee       money.Money `json:"fixed_fee"`
	UnitFee        money.Money `json:"unit_fee"`
	Zones          []string    `json:"zones"`
	ProductIDs     []uuid.UUID `json:"product_ids,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateShippingDTO holds creation-time data for a new fee schedule.
type CreateShippingDTO struct {
	OrganizationID uuid.UUID
	Code           string
	Name           string
	FixedFee       money.Money
	UnitFee        money.Money
	Zones          []string
}

// FromModel maps the persisted fee schedule into a DTO.
func FromModel(m *models.ProductShipping) *ShippingDTO {
	if m == nil {
		return nil
	}
	dto := &ShippingDTO{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Code:           m.Code,
		Name:           m.Name,
		FixedFee:       m.FixedFee,
		UnitFee:        m.UnitFee,
		Zones:          append([]string(nil), m.Zones...),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, product := range m.Products {
		dto.ProductIDs = append(dto.ProductIDs, product.ID)
	}
	return dto
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateShippingDTO) ToModel() *models.ProductShipping {
	zones := c.Zones
	if zones == nil {
		zones = []string{}
	}
	return &models.ProductShipping{
		OrganizationID: c.OrganizationID,
		Code:           c.Code,
		Name:           c.Name,
		FixedFee:       c.FixedFee,
		UnitFee:        c.UnitFee,
		Zones:          pq.StringArray(zones),
	}
}
