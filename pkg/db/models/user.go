package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an organization member able to authenticate against the API.
type User struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null"`
	Email          string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash   string    `gorm:"column:password_hash;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
