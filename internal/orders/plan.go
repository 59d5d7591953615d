package orders

import (
	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
)

// commitPlan is the validated tree ready for a single-transaction commit,
// plus the rows id reconciliation removes on update.
type commitPlan struct {
	order                  *models.Order
	deleteItemIDs          []uuid.UUID
	deleteItemShippingIDs  []uuid.UUID
	deleteOrderShippingIDs []uuid.UUID
}

// buildCommitPlan turns a fully validated payload into persistence models.
// Submitted ids are kept (update in place), missing ids are freshly
// assigned (insert), and existing rows absent from the submission are
// collected for deletion.
func buildCommitPlan(input OrderInput, organizationID uuid.UUID, existing *existingTree) commitPlan {
	order := &models.Order{
		ID:                 uuid.New(),
		OrganizationID:     organizationID,
		Code:               input.Code,
		ProductTotal:       input.ProductTotal,
		OrderShippingTotal: input.OrderShippingTotal,
		Total:              input.Total,
	}
	if existing != nil {
		order.ID = existing.order.ID
		order.CreatedAt = existing.order.CreatedAt
	}

	submittedItems := make(map[uuid.UUID]struct{}, len(input.Items))
	for i := range input.Items {
		in := &input.Items[i]
		item := models.ProductItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			ProductID:     in.ProductID,
			Name:          in.Name,
			Price:         in.Price,
			Quantity:      in.Quantity,
			ItemTotal:     in.ItemTotal,
			Subtotal:      in.Subtotal,
			ShippingTotal: in.ShippingTotal,
			Total:         in.Total,
		}
		if in.ID != nil {
			item.ID = *in.ID
			submittedItems[*in.ID] = struct{}{}
		}

		submittedLines := make(map[uuid.UUID]struct{}, len(in.ShippingItems))
		for j := range in.ShippingItems {
			lineIn := &in.ShippingItems[j]
			line := models.ProductShippingItem{
				ID:                uuid.New(),
				ProductItemID:     item.ID,
				ProductShippingID: lineIn.ProductShippingID,
				Name:              lineIn.Name,
				FixedFee:          lineIn.FixedFee,
				UnitFee:           lineIn.UnitFee,
				ItemTotal:         lineIn.ItemTotal,
			}
			if lineIn.ID != nil {
				line.ID = *lineIn.ID
				submittedLines[*lineIn.ID] = struct{}{}
			}
			item.ShippingItems = append(item.ShippingItems, line)
		}

		order.Items = append(order.Items, item)
	}

	submittedOrderLines := make(map[uuid.UUID]struct{}, len(input.ShippingItems))
	for i := range input.ShippingItems {
		in := &input.ShippingItems[i]
		line := models.OrderShippingItem{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ProductShippingID: in.ProductShippingID,
			Name:              in.Name,
			FixedFee:          in.FixedFee,
			UnitFee:           in.UnitFee,
			ItemTotal:         in.ItemTotal,
		}
		if in.ID != nil {
			line.ID = *in.ID
			submittedOrderLines[*in.ID] = struct{}{}
		}
		order.ShippingItems = append(order.ShippingItems, line)
	}

	plan := commitPlan{order: order}
	if existing == nil {
		return plan
	}

	for id, item := range existing.items {
		if _, ok := submittedItems[id]; !ok {
			plan.deleteItemIDs = append(plan.deleteItemIDs, id)
			continue
		}
		// Kept item: reconcile its shipping lines against the submission.
		submitted := make(map[uuid.UUID]struct{})
		for i := range input.Items {
			if input.Items[i].ID != nil && *input.Items[i].ID == id {
				for j := range input.Items[i].ShippingItems {
					if lineID := input.Items[i].ShippingItems[j].ID; lineID != nil {
						submitted[*lineID] = struct{}{}
					}
				}
			}
		}
		for j := range item.ShippingItems {
			lineID := item.ShippingItems[j].ID
			if _, ok := submitted[lineID]; !ok {
				plan.deleteItemShippingIDs = append(plan.deleteItemShippingIDs, lineID)
			}
		}
	}

	for id := range existing.orderShipping {
		if _, ok := submittedOrderLines[id]; !ok {
			plan.deleteOrderShippingIDs = append(plan.deleteOrderShippingIDs, id)
		}
	}

	return plan
}
