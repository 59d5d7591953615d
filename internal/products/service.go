package products

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
	"github.com/avelarde/merchantry-backend/pkg/money"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

type productRepository interface {
	Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error)
	FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.Product, error)
	ListByOrg(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]models.Product, string, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

// Service exposes product operations scoped to an organization.
type Service interface {
	Create(ctx context.Context, organizationID uuid.UUID, input ProductInput) (*ProductDTO, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]ProductDTO, string, error)
	Update(ctx context.Context, id, organizationID uuid.UUID, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

type service struct {
	repo productRepository
}

// NewService builds a product service with the provided repository.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// ProductInput captures the fields accepted for create and update.
type ProductInput struct {
	Code  string
	Name  string
	Price money.Money
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, organizationID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.Create(ctx, CreateProductDTO{
		OrganizationID: organizationID,
		Code:           strings.TrimSpace(input.Code),
		Name:           strings.TrimSpace(input.Name),
		Price:          input.Price,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "products_org_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already exists in this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]ProductDTO, string, error) {
	rows, nextCursor, err := s.repo.ListByOrg(ctx, organizationID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, id, organizationID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.FindByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	product.Code = strings.TrimSpace(input.Code)
	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "products_org_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already exists in this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
