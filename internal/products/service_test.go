package products

import (
	"context"
	"errors"
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

type stubProductRepo struct {
	product *models.Product
	rows    []models.Product
	cursor  string
	err     error
	updated *models.Product
	deleted bool
}

func (s *stubProductRepo) Create(_ context.Context, dto CreateProductDTO) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product := dto.ToModel()
	product.ID = uuid.New()
	return product, nil
}

func (s *stubProductRepo) FindByIDInOrg(_ context.Context, _, _ uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubProductRepo) ListByOrg(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.Product, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.rows, s.cursor, nil
}

func (s *stubProductRepo) Update(_ context.Context, product *models.Product) error {
	if s.err != nil {
		return s.err
	}
	s.updated = product
	return nil
}

func (s *stubProductRepo) Delete(_ context.Context, _, _ uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = true
	return nil
}

func TestProductServiceCreateValidatesInput(t *testing.T) {
	svc, err := NewService(&stubProductRepo{})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input ProductInput
	}{
		{"missing code", ProductInput{Name: "Widget", Price: money.MustParse("10.0000")}},
		{"missing name", ProductInput{Code: "wid-1", Price: money.MustParse("10.0000")}},
		{"negative price", ProductInput{Code: "wid-1", Name: "Widget", Price: money.MustParse("-1.0000")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, gotErr := svc.Create(context.Background(), uuid.New(), tc.input)
			typed := pkgerrors.As(gotErr)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestProductServiceCreateSuccess(t *testing.T) {
	svc, err := NewService(&stubProductRepo{})
	require.NoError(t, err)

	orgID := uuid.New()
	dto, err := svc.Create(context.Background(), orgID, ProductInput{
		Code:  " wid-1 ",
		Name:  "Widget",
		Price: money.MustParse("10.5000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "wid-1", dto.Code)
	assert.Equal(t, orgID, dto.OrganizationID)
	assert.True(t, dto.Price.Equal(money.MustParse("10.5")))
}

func TestProductServiceCreateMapsUniqueViolation(t *testing.T) {
	repo := &stubProductRepo{err: errors.New(`duplicate key value violates unique constraint "products_org_code_key"`)}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, gotErr := svc.Create(context.Background(), uuid.New(), ProductInput{
		Code: "wid-1", Name: "Widget", Price: money.MustParse("1.0000"),
	})
	typed := pkgerrors.As(gotErr)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestProductServiceGetByIDNotFound(t *testing.T) {
	svc, err := NewService(&stubProductRepo{err: gorm.ErrRecordNotFound})
	require.NoError(t, err)

	_, gotErr := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(gotErr)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestProductServiceUpdateAppliesFields(t *testing.T) {
	orgID := uuid.New()
	repo := &stubProductRepo{product: &models.Product{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Code:           "wid-1",
		Name:           "Widget",
		Price:          money.MustParse("10.0000"),
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.Update(context.Background(), repo.product.ID, orgID, ProductInput{
		Code:  "wid-2",
		Name:  "Widget v2",
		Price: money.MustParse("12.0000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "wid-2", dto.Code)
	assert.Equal(t, "Widget v2", dto.Name)
	require.NotNil(t, repo.updated)
	assert.True(t, repo.updated.Price.Equal(money.MustParse("12")))
}

func TestProductServiceDelete(t *testing.T) {
	repo := &stubProductRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), uuid.New(), uuid.New()))
	assert.True(t, repo.deleted)
}
