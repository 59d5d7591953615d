package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db"
	"github.com/avelarde/merchantry-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/logger"
	"github.com/avelarde/merchantry-backend/pkg/metrics"
	"github.com/avelarde/merchantry-backend/pkg/outbox"
	"github.com/avelarde/merchantry-backend/pkg/pagination"
)

const validationFailedMessage = "order validation failed"

type orderRepository interface {
	FindTreeByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.Order, error)
	FindTreeByIDInOrgTx(tx *gorm.DB, id, organizationID uuid.UUID) (*models.Order, error)
	CodeExistsInOrgTx(tx *gorm.DB, code string, organizationID uuid.UUID, excludeID *uuid.UUID) (bool, error)
	ListByOrg(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	CommitTreeTx(tx *gorm.DB, plan commitPlan, isUpdate bool) error
	DeleteTreeTx(tx *gorm.DB, id, organizationID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type activityEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the order pipeline: validate the submitted tree, commit
// it atomically, surface the error tree otherwise.
type Service interface {
	Create(ctx context.Context, organizationID uuid.UUID, actor *outbox.ActorRef, input OrderInput) (*OrderDTO, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error)
	Update(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef, input OrderInput) (*OrderDTO, error)
	Destroy(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef) error
}

type service struct {
	repo     orderRepository
	tx       txRunner
	validate *validator
	activity activityEmitter
	pipeline *metrics.OrderPipelineMetrics
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo      orderRepository
	Tx        txRunner
	Products  productResolver
	Shippings shippingResolver
	Activity  activityEmitter
	Pipeline  *metrics.OrderPipelineMetrics
	Logger    *logger.Logger
}

// NewService constructs the order pipeline service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if params.Shippings == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		validate: &validator{products: params.Products, shippings: params.Shippings},
		activity: params.Activity,
		pipeline: params.Pipeline,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, organizationID uuid.UUID, actor *outbox.ActorRef, input OrderInput) (*OrderDTO, error) {
	started := time.Now()
	defer func() { s.pipeline.ObserveDuration("create", time.Since(started)) }()

	var committed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		codeTaken, err := s.repo.CodeExistsInOrgTx(tx, input.Code, organizationID, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order code")
		}

		tree, err := s.validate.validateOrder(ctx, input, organizationID, nil, codeTaken)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve references")
		}
		if tree.HasErrors() {
			return pkgerrors.New(pkgerrors.CodeValidation, validationFailedMessage).WithDetails(tree)
		}

		plan := buildCommitPlan(input, organizationID, nil)
		if err := s.repo.CommitTreeTx(tx, plan, false); err != nil {
			return err
		}

		committed, err = s.repo.FindTreeByIDInOrgTx(tx, plan.order.ID, organizationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}

		return s.emit(ctx, tx, outbox.EventOrderCreated, committed.ID, actor, outbox.ActivityEvent{
			Action:        "created",
			ObjectID:      committed.ID,
			ChangedFields: allOrderFields(),
		})
	})
	if err != nil {
		return nil, s.mapCommitError(ctx, err, "create")
	}

	s.pipeline.IncCommitted("create")
	return FromModel(committed), nil
}

func (s *service) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindTreeByIDInOrg(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, organizationID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error) {
	rows, nextCursor, err := s.repo.ListByOrg(ctx, organizationID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef, input OrderInput) (*OrderDTO, error) {
	started := time.Now()
	defer func() { s.pipeline.ObserveDuration("update", time.Since(started)) }()

	var committed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.FindTreeByIDInOrgTx(tx, id, organizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
		}
		existing := indexExistingTree(current)

		codeTaken, err := s.repo.CodeExistsInOrgTx(tx, input.Code, organizationID, &id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order code")
		}

		tree, err := s.validate.validateOrder(ctx, input, organizationID, existing, codeTaken)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve references")
		}
		if tree.HasErrors() {
			return pkgerrors.New(pkgerrors.CodeValidation, validationFailedMessage).WithDetails(tree)
		}

		plan := buildCommitPlan(input, organizationID, existing)
		if err := s.repo.CommitTreeTx(tx, plan, true); err != nil {
			return err
		}

		committed, err = s.repo.FindTreeByIDInOrgTx(tx, id, organizationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}

		return s.emit(ctx, tx, outbox.EventOrderUpdated, committed.ID, actor, outbox.ActivityEvent{
			Action:        "updated",
			ObjectID:      committed.ID,
			ChangedFields: changedOrderFields(current, input, plan),
		})
	})
	if err != nil {
		return nil, s.mapCommitError(ctx, err, "update")
	}

	s.pipeline.IncCommitted("update")
	return FromModel(committed), nil
}

func (s *service) Destroy(ctx context.Context, id, organizationID uuid.UUID, actor *outbox.ActorRef) error {
	started := time.Now()
	defer func() { s.pipeline.ObserveDuration("destroy", time.Since(started)) }()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteTreeTx(tx, id, organizationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		return s.emit(ctx, tx, outbox.EventOrderDeleted, id, actor, outbox.ActivityEvent{
			Action:   "deleted",
			ObjectID: id,
		})
	})
	if err != nil {
		return s.mapCommitError(ctx, err, "destroy")
	}

	s.pipeline.IncCommitted("destroy")
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType string, orderID uuid.UUID, actor *outbox.ActorRef, event outbox.ActivityEvent) error {
	if s.activity == nil {
		return nil
	}
	err := s.activity.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: outbox.AggregateOrder,
		AggregateID:   orderID,
		Actor:         actor,
		Data:          event,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue activity event")
	}
	return nil
}

// mapCommitError normalizes transaction failures. The unique index on
// (organization_id, code) is the authoritative backstop when the pre-check
// raced with a concurrent create.
func (s *service) mapCommitError(ctx context.Context, err error, operation string) error {
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodeValidation {
			s.pipeline.IncRejected(operation)
		}
		return typed
	}
	if db.IsUniqueViolation(err, "orders_org_code_key") {
		s.pipeline.IncRejected(operation)
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgCodeTaken)
	}
	if s.logg != nil {
		s.logg.Error(ctx, "order commit failed", err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "commit order")
}

func allOrderFields() []string {
	return []string{"code", "product_total", "order_shipping_total", "total", keyProductItems, keyOrderShippingItems}
}

// changedOrderFields diffs the previous tree against the accepted payload
// for the activity event.
func changedOrderFields(previous *models.Order, input OrderInput, plan commitPlan) []string {
	changed := make([]string, 0, 6)
	if previous.Code != input.Code {
		changed = append(changed, "code")
	}
	if !previous.ProductTotal.Equal(input.ProductTotal) {
		changed = append(changed, "product_total")
	}
	if !previous.OrderShippingTotal.Equal(input.OrderShippingTotal) {
		changed = append(changed, "order_shipping_total")
	}
	if !previous.Total.Equal(input.Total) {
		changed = append(changed, "total")
	}
	if itemsChanged(previous, input, plan) {
		changed = append(changed, keyProductItems)
	}
	if orderShippingChanged(previous, input, plan) {
		changed = append(changed, keyOrderShippingItems)
	}
	return changed
}

func itemsChanged(previous *models.Order, input OrderInput, plan commitPlan) bool {
	if len(plan.deleteItemIDs) > 0 || len(plan.deleteItemShippingIDs) > 0 {
		return true
	}
	if len(previous.Items) != len(input.Items) {
		return true
	}
	byID := make(map[uuid.UUID]*models.ProductItem, len(previous.Items))
	for i := range previous.Items {
		byID[previous.Items[i].ID] = &previous.Items[i]
	}
	for i := range input.Items {
		in := &input.Items[i]
		if in.ID == nil {
			return true
		}
		prev, ok := byID[*in.ID]
		if !ok {
			return true
		}
		if prev.Name != in.Name || prev.Quantity != in.Quantity ||
			!prev.Price.Equal(in.Price) || !prev.Total.Equal(in.Total) ||
			len(prev.ShippingItems) != len(in.ShippingItems) {
			return true
		}
		for j := range in.ShippingItems {
			lineIn := &in.ShippingItems[j]
			if lineIn.ID == nil {
				return true
			}
			found := false
			for k := range prev.ShippingItems {
				prevLine := &prev.ShippingItems[k]
				if prevLine.ID == *lineIn.ID {
					found = true
					if prevLine.Name != lineIn.Name || !prevLine.FixedFee.Equal(lineIn.FixedFee) ||
						!prevLine.UnitFee.Equal(lineIn.UnitFee) || !prevLine.ItemTotal.Equal(lineIn.ItemTotal) {
						return true
					}
					break
				}
			}
			if !found {
				return true
			}
		}
	}
	return false
}

func orderShippingChanged(previous *models.Order, input OrderInput, plan commitPlan) bool {
	if len(plan.deleteOrderShippingIDs) > 0 {
		return true
	}
	if len(previous.ShippingItems) != len(input.ShippingItems) {
		return true
	}
	byID := make(map[uuid.UUID]*models.OrderShippingItem, len(previous.ShippingItems))
	for i := range previous.ShippingItems {
		byID[previous.ShippingItems[i].ID] = &previous.ShippingItems[i]
	}
	for i := range input.ShippingItems {
		in := &input.ShippingItems[i]
		if in.ID == nil {
			return true
		}
		prev, ok := byID[*in.ID]
		if !ok {
			return true
		}
		if prev.Name != in.Name || !prev.FixedFee.Equal(in.FixedFee) ||
			!prev.UnitFee.Equal(in.UnitFee) || !prev.ItemTotal.Equal(in.ItemTotal) {
			return true
		}
	}
	return false
}
