package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db"
	"github.com/avelarde/merchantry-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
)

type organizationRepository interface {
	Create(ctx context.Context, dto CreateOrganizationDTO) (*models.Organization, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Organization, error)
}

// Service exposes organization operations.
type Service interface {
	Create(ctx context.Context, input CreateOrganizationInput) (*OrganizationDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*OrganizationDTO, error)
}

type service struct {
	repo organizationRepository
}

// NewService builds an organization service with the provided repository.
func NewService(repo organizationRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	return &service{repo: repo}, nil
}

// CreateOrganizationInput captures the fields accepted at creation.
type CreateOrganizationInput struct {
	Code string
	Name string
}

func (s *service) Create(ctx context.Context, input CreateOrganizationInput) (*OrganizationDTO, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	org, err := s.repo.Create(ctx, CreateOrganizationDTO{Code: code, Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "organizations_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "organization code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create organization")
	}
	return FromModel(org), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find organization")
	}
	return FromModel(org), nil
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (*OrganizationDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	org, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename organization")
	}
	return FromModel(org), nil
}
