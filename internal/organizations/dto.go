package organizations

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
)

// OrganizationDTO exposes tenant data in API responses.
type OrganizationDTO struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrganizationDTO holds creation-time data for a new organization.
type CreateOrganizationDTO struct {
	Code string
	Name string
}

// FromModel maps the persisted organization into a DTO.
func FromModel(m *models.Organization) *OrganizationDTO {
	if m == nil {
		return nil
	}
	return &OrganizationDTO{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateOrganizationDTO) ToModel() *models.Organization {
	return &models.Organization{
		Code: c.Code,
		Name: c.Name,
	}
}
