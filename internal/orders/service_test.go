package orders

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
	"github.com/avelarde/merchantry-backend/pkg/outbox"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

type stubOrderRepo struct {
	existing   *models.Order
	findErr    error
	codeTaken  bool
	codeErr    error
	commitErr  error
	deleteErr  error
	plan       *commitPlan
	planUpdate bool
	deletedID  *uuid.UUID
	listRows   []models.Order
}

func (s *stubOrderRepo) FindTreeByIDInOrg(_ context.Context, _, _ uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.existing, nil
}

func (s *stubOrderRepo) FindTreeByIDInOrgTx(_ *gorm.DB, _, _ uuid.UUID) (*models.Order, error) {
	if s.plan != nil {
		return s.plan.order, nil
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.existing, nil
}

func (s *stubOrderRepo) CodeExistsInOrgTx(_ *gorm.DB, _ string, _ uuid.UUID, _ *uuid.UUID) (bool, error) {
	if s.codeErr != nil {
		return false, s.codeErr
	}
	return s.codeTaken, nil
}

func (s *stubOrderRepo) ListByOrg(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.Order, string, error) {
	return s.listRows, "", nil
}

func (s *stubOrderRepo) CommitTreeTx(_ *gorm.DB, plan commitPlan, isUpdate bool) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.plan = &plan
	s.planUpdate = isUpdate
	return nil
}

func (s *stubOrderRepo) DeleteTreeTx(_ *gorm.DB, id, _ uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = &id
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newOrderService(t *testing.T, repo *stubOrderRepo, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Tx:        stubTxRunner{},
		Products:  &stubProducts{orgByID: map[uuid.UUID]uuid.UUID{}},
		Shippings: &stubShippings{orgByID: map[uuid.UUID]uuid.UUID{}},
		Activity:  emitter,
	})
	require.NoError(t, err)
	return svc
}

func TestOrderServiceCreateCommitsAndEmits(t *testing.T) {
	repo := &stubOrderRepo{}
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, emitter)

	orgID := uuid.New()
	actor := &outbox.ActorRef{UserID: uuid.New(), OrganizationID: orgID}
	dto, err := svc.Create(context.Background(), orgID, actor, validOrderInput())
	require.NoError(t, err)

	require.NotNil(t, repo.plan)
	assert.False(t, repo.planUpdate)
	assert.Equal(t, "ord-1001", dto.Code)
	assert.Equal(t, orgID, dto.OrganizationID)
	require.Len(t, dto.Items, 1)
	require.Len(t, dto.Items[0].ShippingItems, 1)

	require.Len(t, emitter.events, 1)
	event := emitter.events[0]
	assert.Equal(t, outbox.EventOrderCreated, event.EventType)
	assert.Equal(t, outbox.AggregateOrder, event.AggregateType)
	assert.Equal(t, actor, event.Actor)
	payload, ok := event.Data.(outbox.ActivityEvent)
	require.True(t, ok)
	assert.Equal(t, "created", payload.Action)
	assert.Contains(t, payload.ChangedFields, "productitem_set")
}

func TestOrderServiceCreateRejectsInvalidTreeWithoutCommit(t *testing.T) {
	repo := &stubOrderRepo{}
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, emitter)

	input := validOrderInput()
	input.Items[0].ItemTotal = mny("30.0001")

	_, err := svc.Create(context.Background(), uuid.New(), nil, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	tree, ok := typed.Details().(*ErrorTree)
	require.True(t, ok)
	assert.Equal(t, []string{msgItemTotalIncorrect}, tree.ProductItems()[0].Field("item_total"))

	assert.Nil(t, repo.plan, "no write may happen when validation fails")
	assert.Empty(t, emitter.events)
}

func TestOrderServiceCreateCodeTakenPreCheck(t *testing.T) {
	repo := &stubOrderRepo{codeTaken: true}
	svc := newOrderService(t, repo, &stubEmitter{})

	_, err := svc.Create(context.Background(), uuid.New(), nil, validOrderInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	tree := typed.Details().(*ErrorTree)
	assert.Equal(t, []string{msgCodeTaken}, tree.Field("code"))
}

func TestOrderServiceCreateUniqueViolationBackstop(t *testing.T) {
	repo := &stubOrderRepo{commitErr: errors.New(`duplicate key value violates unique constraint "orders_org_code_key"`)}
	svc := newOrderService(t, repo, &stubEmitter{})

	_, err := svc.Create(context.Background(), uuid.New(), nil, validOrderInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestOrderServiceCreateStorageFailure(t *testing.T) {
	repo := &stubOrderRepo{commitErr: errors.New("connection reset")}
	svc := newOrderService(t, repo, &stubEmitter{})

	_, err := svc.Create(context.Background(), uuid.New(), nil, validOrderInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
}

func TestOrderServiceUpdateReconciles(t *testing.T) {
	orgID := uuid.New()
	orderID := uuid.New()
	keptItem := uuid.New()
	droppedItem := uuid.New()
	existing := &models.Order{
		ID:             orderID,
		OrganizationID: orgID,
		Code:           "ord-1001",
		ProductTotal:   mny("36.5000"),
		Items: []models.ProductItem{
			{ID: keptItem, OrderID: orderID, Name: "Widget", Price: mny("10.0000"), Quantity: 3},
			{ID: droppedItem, OrderID: orderID, Name: "Gadget", Price: mny("1.0000"), Quantity: 1},
		},
	}
	repo := &stubOrderRepo{existing: existing}
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, emitter)

	input := validOrderInput()
	input.Items[0].ID = &keptItem

	_, err := svc.Update(context.Background(), orderID, orgID, nil, input)
	require.NoError(t, err)

	require.NotNil(t, repo.plan)
	assert.True(t, repo.planUpdate)
	assert.Equal(t, orderID, repo.plan.order.ID)
	assert.Equal(t, []uuid.UUID{droppedItem}, repo.plan.deleteItemIDs)

	require.Len(t, emitter.events, 1)
	payload := emitter.events[0].Data.(outbox.ActivityEvent)
	assert.Equal(t, "updated", payload.Action)
	assert.Contains(t, payload.ChangedFields, "productitem_set")
}

func TestOrderServiceUpdateRejectsForeignItemID(t *testing.T) {
	orgID := uuid.New()
	orderID := uuid.New()
	existing := &models.Order{ID: orderID, OrganizationID: orgID, Code: "ord-1001"}
	repo := &stubOrderRepo{existing: existing}
	svc := newOrderService(t, repo, &stubEmitter{})

	foreign := uuid.New()
	input := validOrderInput()
	input.Items[0].ID = &foreign

	_, err := svc.Update(context.Background(), orderID, orgID, nil, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	tree := typed.Details().(*ErrorTree)
	assert.Equal(t, []string{msgItemNotOfOrder}, tree.ProductItems()[0].Field("id"))
	assert.Nil(t, repo.plan)
}

func TestOrderServiceUpdateNotFound(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newOrderService(t, repo, &stubEmitter{})

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), nil, validOrderInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestOrderServiceDestroy(t *testing.T) {
	repo := &stubOrderRepo{}
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, emitter)

	orderID := uuid.New()
	require.NoError(t, svc.Destroy(context.Background(), orderID, uuid.New(), nil))
	require.NotNil(t, repo.deletedID)
	assert.Equal(t, orderID, *repo.deletedID)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, outbox.EventOrderDeleted, emitter.events[0].EventType)
}

func TestOrderServiceDestroyNotFound(t *testing.T) {
	repo := &stubOrderRepo{deleteErr: gorm.ErrRecordNotFound}
	svc := newOrderService(t, repo, &stubEmitter{})

	err := svc.Destroy(context.Background(), uuid.New(), uuid.New(), nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestOrderServiceGetByIDNotFound(t *testing.T) {
	svc := newOrderService(t, &stubOrderRepo{}, &stubEmitter{})

	_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
