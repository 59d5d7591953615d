package shippings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db"
	"github.com/avelarde/merchantry-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/money"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

type shippingRepository interface {
	Create(ctx context.Context, dto CreateShippingDTO) (*models.ProductShipping, error)
	FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.ProductShipping, error)
	ListByOrg(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]models.ProductShipping, string, error)
	Update(ctx context.Context, shipping *models.ProductShipping) error
	ReplaceProducts(ctx context.Context, shipping *models.ProductShipping, products []models.Product) error
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

type productResolver interface {
	FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.Product, error)
}

// Service exposes fee schedule operations scoped to an organization.
type Service interface {
	Create(ctx context.Context, organizationID uuid.UUID, input ShippingInput) (*ShippingDTO, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (*ShippingDTO, error)
	List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]ShippingDTO, string, error)
	Update(ctx context.Context, id, organizationID uuid.UUID, input ShippingInput) (*ShippingDTO, error)
	LinkProducts(ctx context.Context, id, organizationID uuid.UUID, productIDs []uuid.UUID) (*ShippingDTO, error)
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

type service struct {
	repo     shippingRepository
	products productResolver
}

// NewService builds a fee schedule service with the provided repositories.
func NewService(repo shippingRepository, products productResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, products: products}, nil
}

// ShippingInput captures the fields accepted for create and update.
type ShippingInput struct {
	Code     string
	Name     string
	FixedFee money.Money
	UnitFee  money.Money
	Zones    []string
}

func (in ShippingInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.FixedFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "fixed_fee must not be negative")
	}
	if in.UnitFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit_fee must not be negative")
	}
	for _, zone := range in.Zones {
		if strings.TrimSpace(zone) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "zones must not contain blank entries")
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, organizationID uuid.UUID, input ShippingInput) (*ShippingDTO, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	shipping, err := s.repo.Create(ctx, CreateShippingDTO{
		OrganizationID: organizationID,
		Code:           strings.TrimSpace(input.Code),
		Name:           strings.TrimSpace(input.Name),
		FixedFee:       input.FixedFee,
		UnitFee:        input.UnitFee,
		Zones:          input.Zones,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "product_shippings_org_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipping code already exists in this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping")
	}
	return FromModel(shipping), nil
}

func (s *service) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*ShippingDTO, error) {
	shipping, err := s.repo.FindByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shipping")
	}
	return FromModel(shipping), nil
}

func (s *service) List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]ShippingDTO, string, error) {
	rows, nextCursor, err := s.repo.ListByOrg(ctx, organizationID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shippings")
	}
	dtos := make([]ShippingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, id, organizationID uuid.UUID, input ShippingInput) (*ShippingDTO, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	shipping, err := s.repo.FindByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shipping")
	}
	shipping.Code = strings.TrimSpace(input.Code)
	shipping.Name = strings.TrimSpace(input.Name)
	shipping.FixedFee = input.FixedFee
	shipping.UnitFee = input.UnitFee
	if input.Zones != nil {
		shipping.Zones = pq.StringArray(input.Zones)
	}
	if err := s.repo.Update(ctx, shipping); err != nil {
		if db.IsUniqueViolation(err, "product_shippings_org_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipping code already exists in this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping")
	}
	return FromModel(shipping), nil
}

// LinkProducts replaces the applicable-product set. Every referenced
// product must belong to the same organization.
func (s *service) LinkProducts(ctx context.Context, id, organizationID uuid.UUID, productIDs []uuid.UUID) (*ShippingDTO, error) {
	shipping, err := s.repo.FindByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shipping")
	}

	linked := make([]models.Product, 0, len(productIDs))
	for _, productID := range productIDs {
		product, err := s.products.FindByIDInOrg(ctx, productID, organizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product is in another organization.")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
		}
		linked = append(linked, *product)
	}

	if err := s.repo.ReplaceProducts(ctx, shipping, linked); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link products")
	}
	shipping.Products = linked
	return FromModel(shipping), nil
}

func (s *service) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipping")
	}
	return nil
}
