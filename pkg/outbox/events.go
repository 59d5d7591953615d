package outbox

import "github.com/google/uuid"

// Event type and aggregate type values stored on outbox_events rows.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"

	AggregateOrder = "order"
)

// ActivityEvent is the payload emitted for every order mutation. It
// mirrors the shape downstream activity consumers expect.
type ActivityEvent struct {
	Action        string    `json:"action"`
	ObjectID      uuid.UUID `json:"object_id"`
	ChangedFields []string  `json:"changed_fields,omitempty"`
}
