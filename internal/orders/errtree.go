package orders

import "encoding/json"

// Nested set keys used by the error tree. They match the payload keys so a
// client can address every message by field name and position.
const (
	keyProductItems         = "productitem_set"
	keyProductShippingItems = "productshippingitem_set"
	keyOrderShippingItems   = "ordershippingitem_set"
)

// ErrorTree mirrors the shape of the submitted order payload. Field names map
// to message lists; each nested set key maps to a positional list whose
// elements are nil for valid entries and a nested tree otherwise.
type ErrorTree struct {
	fields               map[string][]string
	productItems         []*ErrorTree
	productShippingItems []*ErrorTree
	orderShippingItems   []*ErrorTree
}

// NewErrorTree returns an empty tree.
func NewErrorTree() *ErrorTree {
	return &ErrorTree{}
}

// Add appends a message to the named field.
func (t *ErrorTree) Add(field, message string) {
	if t.fields == nil {
		t.fields = make(map[string][]string)
	}
	t.fields[field] = append(t.fields[field], message)
}

// Field returns the messages recorded for the named field.
func (t *ErrorTree) Field(field string) []string {
	if t == nil {
		return nil
	}
	return t.fields[field]
}

// SetProductItems records the positional error list for productitem_set.
// The slice must be aligned to the submitted item order.
func (t *ErrorTree) SetProductItems(entries []*ErrorTree) {
	t.productItems = entries
}

// SetProductShippingItems records the positional list for productshippingitem_set.
func (t *ErrorTree) SetProductShippingItems(entries []*ErrorTree) {
	t.productShippingItems = entries
}

// SetOrderShippingItems records the positional list for ordershippingitem_set.
func (t *ErrorTree) SetOrderShippingItems(entries []*ErrorTree) {
	t.orderShippingItems = entries
}

// ProductItems returns the positional productitem_set error list.
func (t *ErrorTree) ProductItems() []*ErrorTree {
	if t == nil {
		return nil
	}
	return t.productItems
}

// ProductShippingItems returns the positional productshippingitem_set error list.
func (t *ErrorTree) ProductShippingItems() []*ErrorTree {
	if t == nil {
		return nil
	}
	return t.productShippingItems
}

// OrderShippingItems returns the positional ordershippingitem_set error list.
func (t *ErrorTree) OrderShippingItems() []*ErrorTree {
	if t == nil {
		return nil
	}
	return t.orderShippingItems
}

// HasErrors reports whether any message exists anywhere in the tree.
func (t *ErrorTree) HasErrors() bool {
	if t == nil {
		return false
	}
	if len(t.fields) > 0 {
		return true
	}
	for _, set := range [][]*ErrorTree{t.productItems, t.productShippingItems, t.orderShippingItems} {
		for _, entry := range set {
			if entry.HasErrors() {
				return true
			}
		}
	}
	return false
}

func anyEntryHasErrors(entries []*ErrorTree) bool {
	for _, entry := range entries {
		if entry.HasErrors() {
			return true
		}
	}
	return false
}

// MarshalJSON renders the tree in its wire shape. Nested set keys appear only
// when at least one positional entry carries an error; valid positions render
// as null so indexes stay aligned with the submitted payload.
func (t *ErrorTree) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.fields)+3)
	for field, messages := range t.fields {
		out[field] = messages
	}
	if anyEntryHasErrors(t.productItems) {
		out[keyProductItems] = positionalList(t.productItems)
	}
	if anyEntryHasErrors(t.productShippingItems) {
		out[keyProductShippingItems] = positionalList(t.productShippingItems)
	}
	if anyEntryHasErrors(t.orderShippingItems) {
		out[keyOrderShippingItems] = positionalList(t.orderShippingItems)
	}
	return json.Marshal(out)
}

func positionalList(entries []*ErrorTree) []interface{} {
	list := make([]interface{}, len(entries))
	for i, entry := range entries {
		if entry.HasErrors() {
			list[i] = entry
		}
	}
	return list
}
