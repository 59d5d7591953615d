package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelarde/merchantry-backend/api/middleware"
	ordersvc "github.com/avelarde/merchantry-backend/internal/orders"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/logger"
	"github.com/avelarde/merchantry-backend/pkg/outbox"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubOrderService struct {
	created   *ordersvc.OrderInput
	createErr error
	destroyed bool
	order     *ordersvc.OrderDTO
}

func (s *stubOrderService) Create(ctx context.Context, organizationID uuid.UUID, actor *outbox.ActorRef, input ordersvc.OrderInput) (*ordersvc.OrderDTO, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &input
	return s.order, nil
}

func (s *stubOrderService) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*ordersvc.OrderDTO, error) {
	if s.order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrderService) List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]ordersvc.OrderDTO, string, error) {
	if s.order == nil {
		return nil, "", nil
	}
	return []ordersvc.OrderDTO{*s.order}, "", nil
}

func (s *stubOrderService) Update(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef, input ordersvc.OrderInput) (*ordersvc.OrderDTO, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &input
	return s.order, nil
}

func (s *stubOrderService) Destroy(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef) error {
	s.destroyed = true
	return nil
}

func authedContext(userID, orgID uuid.UUID) context.Context {
	ctx := middleware.WithUserID(context.Background(), userID.String())
	return middleware.WithOrganizationID(ctx, orgID.String())
}

func TestOrderCreate(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	orgID := uuid.New()

	body := `{
		"code": "ORD-1",
		"product_total": "36.5",
		"order_shipping_total": "5",
		"total": "41.5",
		"productitem_set": [],
		"ordershippingitem_set": []
	}`

	t.Run("missing user context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		OrderCreate(&stubOrderService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing organization context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(context.Background(), userID.String()))
		rec := httptest.NewRecorder()
		OrderCreate(&stubOrderService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"code":`))
		req = req.WithContext(authedContext(userID, orgID))
		rec := httptest.NewRecorder()
		OrderCreate(&stubOrderService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubOrderService{order: &ordersvc.OrderDTO{ID: uuid.New(), OrganizationID: orgID, Code: "ORD-1"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = req.WithContext(authedContext(userID, orgID))
		rec := httptest.NewRecorder()
		OrderCreate(stub, logg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, stub.created)
		assert.Equal(t, "ORD-1", stub.created.Code)

		var envelope struct {
			Data ordersvc.OrderDTO `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "ORD-1", envelope.Data.Code)
	})

	t.Run("validation rejection surfaces details", func(t *testing.T) {
		tree := ordersvc.NewErrorTree()
		tree.Add("total", "Total is incorrect.")
		stub := &stubOrderService{
			createErr: pkgerrors.New(pkgerrors.CodeValidation, "order validation failed").WithDetails(tree),
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = req.WithContext(authedContext(userID, orgID))
		rec := httptest.NewRecorder()
		OrderCreate(stub, logg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var envelope struct {
			Error struct {
				Code    string          `json:"code"`
				Message string          `json:"message"`
				Details json.RawMessage `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
		assert.JSONEq(t, `{"total": ["Total is incorrect."]}`, string(envelope.Error.Details))
	})
}

func TestOrderDestroy(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	orgID := uuid.New()
	orderID := uuid.New()

	t.Run("invalid order id", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderId", "not-a-uuid")
		ctx := context.WithValue(authedContext(userID, orgID), chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders/not-a-uuid", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		OrderDestroy(&stubOrderService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderId", orderID.String())
		ctx := context.WithValue(authedContext(userID, orgID), chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+orderID.String(), nil).WithContext(ctx)

		stub := &stubOrderService{}
		rec := httptest.NewRecorder()
		OrderDestroy(stub, logg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, stub.destroyed)
	})
}

func TestOrderList(t *testing.T) {
	logg := testLogger()
	orgID := uuid.New()

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=abc", nil)
		req = req.WithContext(middleware.WithOrganizationID(context.Background(), orgID.String()))
		rec := httptest.NewRecorder()
		OrderList(&stubOrderService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubOrderService{order: &ordersvc.OrderDTO{ID: uuid.New(), OrganizationID: orgID, Code: "ORD-1"}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10", nil)
		req = req.WithContext(middleware.WithOrganizationID(context.Background(), orgID.String()))
		rec := httptest.NewRecorder()
		OrderList(stub, logg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data struct {
				Items []ordersvc.OrderDTO `json:"items"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data.Items, 1)
		assert.Equal(t, "ORD-1", envelope.Data.Items[0].Code)
	})
}
