package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTreeEmpty(t *testing.T) {
	tree := NewErrorTree()
	assert.False(t, tree.HasErrors())

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestErrorTreeTopLevelFields(t *testing.T) {
	tree := NewErrorTree()
	tree.Add("code", "Code is already in another order.")
	tree.Add("total", "Total is incorrect.")
	assert.True(t, tree.HasErrors())

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": ["Code is already in another order."],
		"total": ["Total is incorrect."]
	}`, string(raw))
}

func TestErrorTreePositionalAlignment(t *testing.T) {
	second := NewErrorTree()
	second.Add("item_total", "Item total is incorrect.")

	tree := NewErrorTree()
	tree.SetProductItems([]*ErrorTree{NewErrorTree(), second})

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"productitem_set": [null, {"item_total": ["Item total is incorrect."]}]
	}`, string(raw))
}

func TestErrorTreeAllValidChildrenOmitted(t *testing.T) {
	tree := NewErrorTree()
	tree.SetProductItems([]*ErrorTree{NewErrorTree(), NewErrorTree()})
	assert.False(t, tree.HasErrors())

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestErrorTreeNestedShippingErrors(t *testing.T) {
	line := NewErrorTree()
	line.Add("product_shipping_id", "Product shipping is in another organization.")

	item := NewErrorTree()
	item.Add("subtotal", "Subtotal is incorrect.")
	item.SetProductShippingItems([]*ErrorTree{nil, line})

	tree := NewErrorTree()
	tree.SetProductItems([]*ErrorTree{item})
	tree.SetOrderShippingItems([]*ErrorTree{NewErrorTree()})

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"productitem_set": [{
			"subtotal": ["Subtotal is incorrect."],
			"productshippingitem_set": [null, {"product_shipping_id": ["Product shipping is in another organization."]}]
		}]
	}`, string(raw))
}
