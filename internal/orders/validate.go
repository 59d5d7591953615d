package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/money"
)

// Validation messages are part of the wire contract; clients render them
// next to the corresponding input field.
const (
	msgItemTotalIncorrect     = "Item total is incorrect."
	msgSubtotalIncorrect      = "Subtotal is incorrect."
	msgShippingTotalIncorrect = "Shipping total is incorrect."
	msgTotalIncorrect         = "Total is incorrect."
	msgProductTotalIncorrect  = "Product total is incorrect."
	msgCodeTaken              = "Code is already in another order."
	msgCodeRequired           = "Code is required."
	msgProductForeignOrg      = "Product is in another organization."
	msgShippingForeignOrg     = "Product shipping is in another organization."
	msgItemNotOfOrder         = "Product item does not belong to order."
	msgShippingLineNotOfItem  = "Product shipping item does not belong to product item."
	msgShippingLineNotOfOrder = "Order shipping item does not belong to order."
	msgMustNotBeNegative      = "Must not be negative."
	msgQuantityMustBePositive = "Must be greater than zero."
)

type productResolver interface {
	FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.Product, error)
}

type shippingResolver interface {
	FindByIDInOrg(ctx context.Context, id, organizationID uuid.UUID) (*models.ProductShipping, error)
}

// validator recomputes and cross-checks every total in a submitted order
// tree. All checks within a sibling list run to completion so the full
// error tree comes back in one pass; only resolver infrastructure failures
// short-circuit.
type validator struct {
	products  productResolver
	shippings shippingResolver
}

// existingTree indexes a loaded order so ownership checks and
// id reconciliation are O(1) per submitted entry.
type existingTree struct {
	order         *models.Order
	items         map[uuid.UUID]*models.ProductItem
	itemShipping  map[uuid.UUID]map[uuid.UUID]struct{}
	orderShipping map[uuid.UUID]struct{}
}

func indexExistingTree(order *models.Order) *existingTree {
	if order == nil {
		return nil
	}
	tree := &existingTree{
		order:         order,
		items:         make(map[uuid.UUID]*models.ProductItem, len(order.Items)),
		itemShipping:  make(map[uuid.UUID]map[uuid.UUID]struct{}, len(order.Items)),
		orderShipping: make(map[uuid.UUID]struct{}, len(order.ShippingItems)),
	}
	for i := range order.Items {
		item := &order.Items[i]
		tree.items[item.ID] = item
		lines := make(map[uuid.UUID]struct{}, len(item.ShippingItems))
		for j := range item.ShippingItems {
			lines[item.ShippingItems[j].ID] = struct{}{}
		}
		tree.itemShipping[item.ID] = lines
	}
	for i := range order.ShippingItems {
		tree.orderShipping[order.ShippingItems[i].ID] = struct{}{}
	}
	return tree
}

func (t *existingTree) hasItem(id uuid.UUID) bool {
	if t == nil {
		return false
	}
	_, ok := t.items[id]
	return ok
}

func (t *existingTree) hasItemShippingLine(itemID *uuid.UUID, lineID uuid.UUID) bool {
	if t == nil || itemID == nil {
		return false
	}
	lines, ok := t.itemShipping[*itemID]
	if !ok {
		return false
	}
	_, ok = lines[lineID]
	return ok
}

func (t *existingTree) hasOrderShippingLine(id uuid.UUID) bool {
	if t == nil {
		return false
	}
	_, ok := t.orderShipping[id]
	return ok
}

// validateOrder runs the full pipeline over the submitted tree. codeTaken is
// the result of the application-level uniqueness pre-check; the storage
// constraint remains the authoritative backstop. A non-nil existing tree
// switches on update semantics (ownership checks against the loaded order).
func (v *validator) validateOrder(ctx context.Context, input OrderInput, organizationID uuid.UUID, existing *existingTree, codeTaken bool) (*ErrorTree, error) {
	tree := NewErrorTree()

	if strings.TrimSpace(input.Code) == "" {
		tree.Add("code", msgCodeRequired)
	} else if codeTaken {
		tree.Add("code", msgCodeTaken)
	}

	// A row id may be claimed once per submission; a repeat is treated the
	// same as an id that belongs to another order.
	seenItemIDs := make(map[uuid.UUID]struct{}, len(input.Items))
	itemTrees := make([]*ErrorTree, len(input.Items))
	for i := range input.Items {
		duplicate := false
		if id := input.Items[i].ID; id != nil {
			if _, ok := seenItemIDs[*id]; ok {
				duplicate = true
			} else {
				seenItemIDs[*id] = struct{}{}
			}
		}
		itemTree, err := v.validateProductItem(ctx, input.Items[i], organizationID, existing, duplicate)
		if err != nil {
			return nil, err
		}
		itemTrees[i] = itemTree
	}
	tree.SetProductItems(itemTrees)

	// Order-level shipping fees are charged against the whole order; the
	// quantity basis is the sum of the product item quantities.
	quantityBasis := 0
	for i := range input.Items {
		quantityBasis += input.Items[i].Quantity
	}

	seenLineIDs := make(map[uuid.UUID]struct{}, len(input.ShippingItems))
	shippingTrees := make([]*ErrorTree, len(input.ShippingItems))
	for i := range input.ShippingItems {
		line := input.ShippingItems[i]
		owned := line.ID == nil || existing.hasOrderShippingLine(*line.ID)
		if line.ID != nil {
			if _, ok := seenLineIDs[*line.ID]; ok {
				owned = false
			} else {
				seenLineIDs[*line.ID] = struct{}{}
			}
		}
		lineTree, err := v.validateShippingLine(ctx, line, quantityBasis, organizationID, owned, msgShippingLineNotOfOrder)
		if err != nil {
			return nil, err
		}
		shippingTrees[i] = lineTree
	}
	tree.SetOrderShippingItems(shippingTrees)

	productTotal := money.Money{}
	for i := range input.Items {
		productTotal = productTotal.Add(input.Items[i].Total)
	}
	if !input.ProductTotal.Equal(productTotal) {
		tree.Add("product_total", msgProductTotalIncorrect)
	}

	orderShippingTotal := money.Money{}
	for i := range input.ShippingItems {
		orderShippingTotal = orderShippingTotal.Add(input.ShippingItems[i].ItemTotal)
	}
	if !input.OrderShippingTotal.Equal(orderShippingTotal) {
		tree.Add("order_shipping_total", msgShippingTotalIncorrect)
	}

	if !input.Total.Equal(input.ProductTotal.Add(input.OrderShippingTotal)) {
		tree.Add("total", msgTotalIncorrect)
	}

	return tree, nil
}

// validateProductItem checks one order line in fixed order: resolve
// references, own scalar fields, children, then the aggregates that depend
// on the children.
func (v *validator) validateProductItem(ctx context.Context, item ProductItemInput, organizationID uuid.UUID, existing *existingTree, duplicate bool) (*ErrorTree, error) {
	tree := NewErrorTree()

	if item.ProductID != nil {
		if _, err := v.products.FindByIDInOrg(ctx, *item.ProductID, organizationID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			tree.Add("product_id", msgProductForeignOrg)
		}
	}

	ownsID := item.ID != nil && existing.hasItem(*item.ID) && !duplicate
	if item.ID != nil && !ownsID {
		tree.Add("id", msgItemNotOfOrder)
	}

	if item.Quantity <= 0 {
		tree.Add("quantity", msgQuantityMustBePositive)
	}
	if item.Price.IsNegative() {
		tree.Add("price", msgMustNotBeNegative)
	}
	if !item.ItemTotal.Equal(item.Price.MulInt(item.Quantity)) {
		tree.Add("item_total", msgItemTotalIncorrect)
	}
	if !item.Subtotal.Equal(item.ItemTotal) {
		tree.Add("subtotal", msgSubtotalIncorrect)
	}

	// Shipping lines with an id must already hang off this item.
	parentID := item.ID
	if !ownsID {
		parentID = nil
	}
	seenLineIDs := make(map[uuid.UUID]struct{}, len(item.ShippingItems))
	lineTrees := make([]*ErrorTree, len(item.ShippingItems))
	for i := range item.ShippingItems {
		line := item.ShippingItems[i]
		owned := line.ID == nil || existing.hasItemShippingLine(parentID, *line.ID)
		if line.ID != nil {
			if _, ok := seenLineIDs[*line.ID]; ok {
				owned = false
			} else {
				seenLineIDs[*line.ID] = struct{}{}
			}
		}
		lineTree, err := v.validateShippingLine(ctx, line, item.Quantity, organizationID, owned, msgShippingLineNotOfItem)
		if err != nil {
			return nil, err
		}
		lineTrees[i] = lineTree
	}
	tree.SetProductShippingItems(lineTrees)

	shippingTotal := money.Money{}
	for i := range item.ShippingItems {
		shippingTotal = shippingTotal.Add(item.ShippingItems[i].ItemTotal)
	}
	if !item.ShippingTotal.Equal(shippingTotal) {
		tree.Add("shipping_total", msgShippingTotalIncorrect)
	}
	if !item.Total.Equal(item.Subtotal.Add(item.ShippingTotal)) {
		tree.Add("total", msgTotalIncorrect)
	}

	return tree, nil
}

// validateShippingLine checks one shipping line against its fee schedule
// reference and the owning quantity. owned reflects the ownership check the
// caller already performed against the existing tree.
func (v *validator) validateShippingLine(ctx context.Context, line ShippingItemInput, quantity int, organizationID uuid.UUID, owned bool, ownershipMessage string) (*ErrorTree, error) {
	tree := NewErrorTree()

	if line.ProductShippingID != nil {
		if _, err := v.shippings.FindByIDInOrg(ctx, *line.ProductShippingID, organizationID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			tree.Add("product_shipping_id", msgShippingForeignOrg)
		}
	}

	if !owned {
		tree.Add("id", ownershipMessage)
	}

	if line.FixedFee.IsNegative() {
		tree.Add("fixed_fee", msgMustNotBeNegative)
	}
	if line.UnitFee.IsNegative() {
		tree.Add("unit_fee", msgMustNotBeNegative)
	}
	if !line.ItemTotal.Equal(line.FixedFee.Add(line.UnitFee.MulInt(quantity))) {
		tree.Add("item_total", msgItemTotalIncorrect)
	}

	return tree, nil
}
