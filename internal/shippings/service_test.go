package shippings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/money"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

type stubShippingRepo struct {
	shipping *models.ProductShipping
	err      error
	replaced []models.Product
}

func (s *stubShippingRepo) Create(_ context.Context, dto CreateShippingDTO) (*models.ProductShipping, error) {
	if s.err != nil {
		return nil, s.err
	}
	shipping := dto.ToModel()
	shipping.ID = uuid.New()
	return shipping, nil
}

func (s *stubShippingRepo) FindByIDInOrg(_ context.Context, _, _ uuid.UUID) (*models.ProductShipping, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.shipping, nil
}

func (s *stubShippingRepo) ListByOrg(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.ProductShipping, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	if s.shipping == nil {
		return nil, "", nil
	}
	return []models.ProductShipping{*s.shipping}, "", nil
}

func (s *stubShippingRepo) Update(_ context.Context, _ *models.ProductShipping) error {
	return s.err
}

func (s *stubShippingRepo) ReplaceProducts(_ context.Context, _ *models.ProductShipping, products []models.Product) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = products
	return nil
}

func (s *stubShippingRepo) Delete(_ context.Context, _, _ uuid.UUID) error {
	return s.err
}

type stubProductResolver struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductResolver) FindByIDInOrg(_ context.Context, id, organizationID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok || product.OrganizationID != organizationID {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func TestShippingServiceCreateValidatesFees(t *testing.T) {
	svc, err := NewService(&stubShippingRepo{}, &stubProductResolver{})
	require.NoError(t, err)

	_, gotErr := svc.Create(context.Background(), uuid.New(), ShippingInput{
		Code:     "std",
		Name:     "Standard",
		FixedFee: money.MustParse("-1.0000"),
	})
	typed := pkgerrors.As(gotErr)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestShippingServiceCreateSuccess(t *testing.T) {
	svc, err := NewService(&stubShippingRepo{}, &stubProductResolver{})
	require.NoError(t, err)

	orgID := uuid.New()
	dto, err := svc.Create(context.Background(), orgID, ShippingInput{
		Code:     "std",
		Name:     "Standard",
		FixedFee: money.MustParse("5.0000"),
		UnitFee:  money.MustParse("0.5000"),
		Zones:    []string{"us-east", "us-west"},
	})
	require.NoError(t, err)
	assert.Equal(t, orgID, dto.OrganizationID)
	assert.Equal(t, []string{"us-east", "us-west"}, dto.Zones)
	assert.True(t, dto.FixedFee.Equal(money.MustParse("5")))
}

func TestShippingServiceLinkProductsRejectsForeignProduct(t *testing.T) {
	orgID := uuid.New()
	shipping := &models.ProductShipping{ID: uuid.New(), OrganizationID: orgID}
	foreign := &models.Product{ID: uuid.New(), OrganizationID: uuid.New()}
	svc, err := NewService(
		&stubShippingRepo{shipping: shipping},
		&stubProductResolver{products: map[uuid.UUID]*models.Product{foreign.ID: foreign}},
	)
	require.NoError(t, err)

	_, gotErr := svc.LinkProducts(context.Background(), shipping.ID, orgID, []uuid.UUID{foreign.ID})
	typed := pkgerrors.As(gotErr)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestShippingServiceLinkProductsSuccess(t *testing.T) {
	orgID := uuid.New()
	shipping := &models.ProductShipping{ID: uuid.New(), OrganizationID: orgID}
	product := &models.Product{ID: uuid.New(), OrganizationID: orgID, Code: "wid-1"}
	repo := &stubShippingRepo{shipping: shipping}
	svc, err := NewService(repo, &stubProductResolver{products: map[uuid.UUID]*models.Product{product.ID: product}})
	require.NoError(t, err)

	dto, err := svc.LinkProducts(context.Background(), shipping.ID, orgID, []uuid.UUID{product.ID})
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, product.ID, repo.replaced[0].ID)
	assert.Equal(t, []uuid.UUID{product.ID}, dto.ProductIDs)
}

func TestShippingServiceGetByIDNotFound(t *testing.T) {
	svc, err := NewService(&stubShippingRepo{err: gorm.ErrRecordNotFound}, &stubProductResolver{})
	require.NoError(t, err)

	_, gotErr := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(gotErr)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
