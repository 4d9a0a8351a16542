package domain

import "time"

// OrderEventType classifies an entry in the order audit trail.
type OrderEventType string

const (
	OrderEventCreated    OrderEventType = "created"
	OrderEventDelivered  OrderEventType = "delivered"
	OrderEventReassigned OrderEventType = "reassigned"
	OrderEventUnassigned OrderEventType = "unassigned"
)

// OrderEvent records something that happened to an order.
type OrderEvent struct {
	OrderID       uint           `json:"order_id"                 bson:"order_id"`
	Type          OrderEventType `json:"type"                     bson:"type"`
	Status        string         `json:"status"                   bson:"status"`
	ClientID      uint           `json:"client_id"                bson:"client_id"`
	TransporterID *uint          `json:"transporter_id,omitempty" bson:"transporter_id,omitempty"`
	ActorUserID   uint           `json:"actor_user_id,omitempty"  bson:"actor_user_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"              bson:"occurred_at"`
	RecordedAt    time.Time      `json:"recorded_at,omitempty"    bson:"recorded_at,omitempty"`
}

// NewOrderEvent snapshots an order into an event of the given type.
func NewOrderEvent(t OrderEventType, o *Order, actor uint, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		Type:          t,
		Status:        o.Status,
		ClientID:      o.ClientID,
		TransporterID: o.TransporterID,
		ActorUserID:   actor,
		OccurredAt:    at.UTC(),
	}
}
