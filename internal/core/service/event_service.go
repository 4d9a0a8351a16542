package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// DedupChecker abstracts the redelivery guard (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, orderID uint, eventType string, ts time.Time) (bool, error)
	Mark(ctx context.Context, orderID uint, eventType string, ts time.Time) error
}

type eventService struct {
	events ports.EventRepository
	dedup  DedupChecker
	now    func() time.Time
	log    zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(events ports.EventRepository, dedup DedupChecker, log zerolog.Logger) ports.EventService {
	return &eventService{
		events: events,
		dedup:  dedup,
		now:    time.Now,
		log:    log,
	}
}

// Record deduplicates and appends a single event to the audit trail.
func (s *eventService) Record(ctx context.Context, e domain.OrderEvent) error {
	if e.OrderID == 0 {
		return domain.NewValidationError("order_id", "order_id is required")
	}
	switch e.Type {
	case domain.OrderEventCreated, domain.OrderEventDelivered,
		domain.OrderEventReassigned, domain.OrderEventUnassigned:
	default:
		return domain.NewValidationError("type", fmt.Sprintf("unknown event type %q", e.Type))
	}

	isDup, err := s.dedup.IsDuplicate(ctx, e.OrderID, string(e.Type), e.OccurredAt)
	if err != nil {
		s.log.Warn().Err(err).Uint("order_id", e.OrderID).Msg("dedup check failed, recording anyway")
	} else if isDup {
		s.log.Debug().Uint("order_id", e.OrderID).Str("type", string(e.Type)).Msg("duplicate event skipped")
		return nil
	}

	e.RecordedAt = s.now().UTC()
	if err := s.events.Insert(ctx, &e); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	if err := s.dedup.Mark(ctx, e.OrderID, string(e.Type), e.OccurredAt); err != nil {
		s.log.Warn().Err(err).Uint("order_id", e.OrderID).Msg("failed to set dedup key")
	}

	s.log.Debug().
		Uint("order_id", e.OrderID).
		Str("type", string(e.Type)).
		Msg("order event recorded")
	return nil
}
