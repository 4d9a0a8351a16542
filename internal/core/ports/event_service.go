package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// EventService records order audit events delivered by the dispatcher.
type EventService interface {
	Record(ctx context.Context, event domain.OrderEvent) error
}
