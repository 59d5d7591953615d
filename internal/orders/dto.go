package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/pkg/db/models"
	"github.com/avelarde/merchantry-backend/pkg/money"
)

// OrderInput is the full order tree as submitted by the client. Every
// monetary total is recomputed server-side and must match exactly.
type OrderInput struct {
	Code               string              `json:"code"`
	ProductTotal       money.Money         `json:"product_total"`
	OrderShippingTotal money.Money         `json:"order_shipping_total"`
	Total              money.Money         `json:"total"`
	Items              []ProductItemInput  `json:"productitem_set"`
	ShippingItems      []ShippingItemInput `json:"ordershippingitem_set"`
}

// ProductItemInput is one submitted order line with its shipping sub-lines.
type ProductItemInput struct {
	ID            *uuid.UUID          `json:"id,omitempty"`
	ProductID     *uuid.UUID          `json:"product_id,omitempty"`
	Name          string              `json:"name"`
	Price         money.Money         `json:"price"`
	Quantity      int                 `json:"quantity"`
	ItemTotal     money.Money         `json:"item_total"`
	Subtotal      money.Money         `json:"subtotal"`
	ShippingTotal money.Money         `json:"shipping_total"`
	Total         money.Money         `json:"total"`
	ShippingItems []ShippingItemInput `json:"productshippingitem_set"`
}

// ShippingItemInput is one submitted shipping line. The same shape serves
// both product-level and order-level lines.
type ShippingItemInput struct {
	ID                *uuid.UUID  `json:"id,omitempty"`
	ProductShippingID *uuid.UUID  `json:"product_shipping_id,omitempty"`
	Name              string      `json:"name"`
	FixedFee          money.Money `json:"fixed_fee"`
	UnitFee           money.Money `json:"unit_fee"`
	ItemTotal         money.Money `json:"item_total"`
}

// OrderDTO is the committed order tree as returned to clients.
type OrderDTO struct {
	ID                 uuid.UUID         `json:"id"`
	OrganizationID     uuid.UUID         `json:"organization_id"`
	Code               string            `json:"code"`
	ProductTotal       money.Money       `json:"product_total"`
	OrderShippingTotal money.Money       `json:"order_shipping_total"`
	Total              money.Money       `json:"total"`
	Items              []ProductItemDTO  `json:"productitem_set"`
	ShippingItems      []ShippingItemDTO `json:"ordershippingitem_set"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ProductItemDTO is one committed order line.
type ProductItemDTO struct {
	ID            uuid.UUID         `json:"id"`
	ProductID     *uuid.UUID        `json:"product_id,omitempty"`
	Name          string            `json:"name"`
	Price         money.Money       `json:"price"`
	Quantity      int               `json:"quantity"`
	ItemTotal     money.Money       `json:"item_total"`
	Subtotal      money.Money       `json:"subtotal"`
	ShippingTotal money.Money       `json:"shipping_total"`
	Total         money.Money       `json:"total"`
	ShippingItems []ShippingItemDTO `json:"productshippingitem_set"`
}

// ShippingItemDTO is one committed shipping line.
type ShippingItemDTO struct {
	ID                uuid.UUID   `json:"id"`
	ProductShippingID *uuid.UUID  `json:"product_shipping_id,omitempty"`
	Name              string      `json:"name"`
	FixedFee          money.Money `json:"fixed_fee"`
	UnitFee           money.Money `json:"unit_fee"`
	ItemTotal         money.Money `json:"item_total"`
}

// FromModel maps the persisted order tree into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                 m.ID,
		OrganizationID:     m.OrganizationID,
		Code:               m.Code,
		ProductTotal:       m.ProductTotal,
		OrderShippingTotal: m.OrderShippingTotal,
		Total:              m.Total,
		Items:              make([]ProductItemDTO, 0, len(m.Items)),
		ShippingItems:      make([]ShippingItemDTO, 0, len(m.ShippingItems)),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	for i := range m.Items {
		item := &m.Items[i]
		itemDTO := ProductItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Price:         item.Price,
			Quantity:      item.Quantity,
			ItemTotal:     item.ItemTotal,
			Subtotal:      item.Subtotal,
			ShippingTotal: item.ShippingTotal,
			Total:         item.Total,
			ShippingItems: make([]ShippingItemDTO, 0, len(item.ShippingItems)),
		}
		for j := range item.ShippingItems {
			line := &item.ShippingItems[j]
			itemDTO.ShippingItems = append(itemDTO.ShippingItems, ShippingItemDTO{
				ID:                line.ID,
				ProductShippingID: line.ProductShippingID,
				Name:              line.Name,
				FixedFee:          line.FixedFee,
				UnitFee:           line.UnitFee,
				ItemTotal:         line.ItemTotal,
			})
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	for i := range m.ShippingItems {
		line := &m.ShippingItems[i]
		dto.ShippingItems = append(dto.ShippingItems, ShippingItemDTO{
			ID:                line.ID,
			ProductShippingID: line.ProductShippingID,
			Name:              line.Name,
			FixedFee:          line.FixedFee,
			UnitFee:           line.UnitFee,
			ItemTotal:         line.ItemTotal,
		})
	}
	return dto
}
