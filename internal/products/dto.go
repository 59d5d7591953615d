package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/money"
)

// ProductDTO exposes product data in API responses.
type ProductDTO struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Price          money.Money `json:"price"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateProductDTO holds creation-time data for a new product.
type CreateProductDTO struct {
	OrganizationID uuid.UUID
	Code           string
	Name           string
	Price          money.Money
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Code:           m.Code,
		Name:           m.Name,
		Price:          m.Price,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateProductDTO) ToModel() *models.Product {
	return &models.Product{
		OrganizationID: c.OrganizationID,
		Code:           c.Code,
		Name:           c.Name,
		Price:          c.Price,
	}
}
