package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// EventRepository persists the order audit trail.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.OrderEvent) error
	// ListByOrder returns the events of an order, oldest first.
	ListByOrder(ctx context.Context, orderID uint) ([]*domain.OrderEvent, error)
}

// EventPublisher hands order events to the asynchronous audit pipeline.
// Enqueue must not block the request for long.
type EventPublisher interface {
	Enqueue(event domain.OrderEvent)
	// EnqueueBatch publishes events in slice order.
	EnqueueBatch(events []domain.OrderEvent)
}
