package events

import (
	"context"
	"time"
)

// Event types published on the bus. They double as NATS subject suffixes.
const (
	StoreChanged         = "store.changed"
	TableCreated         = "table.created"
	TableUpdated         = "table.updated"
	TableDeleted         = "table.deleted"
	TableStatusChanged   = "table.status.changed"
	TableOrderUpdated    = "table.order.updated"
	TableTransferred     = "table.transferred"
	FloorPlanChanged     = "floorplan.changed"
	MenuChanged          = "menu.changed"
	CustomerChanged      = "customer.changed"
	CustomerOrderCreated = "customer.order.created"
	PaymentCompleted     = "payment.completed"
)

// Event describes a committed mutation.
type Event struct {
	Type           string    `json:"eventType"`
	Key            string    `json:"key,omitempty"`
	EntityID       string    `json:"entityId,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher is what mutating services depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
