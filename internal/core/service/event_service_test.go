package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, _ uint, eventType string, _ time.Time) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, eventType)
	return nil
}

func newEventSvc(repo *stubEventRepo, dedup *stubDedup) *eventService {
	svc := NewEventService(repo, dedup, discardLogger).(*eventService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC) }
	return svc
}

func sampleEvent() domain.OrderEvent {
	transporter := uint(7)
	return domain.OrderEvent{
		OrderID:       1,
		Type:          domain.OrderEventCreated,
		Status:        "preparing",
		ClientID:      3,
		TransporterID: &transporter,
		OccurredAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestEventService_Record_HappyPath(t *testing.T) {
	repo := &stubEventRepo{}
	dedup := &stubDedup{}
	svc := newEventSvc(repo, dedup)

	if err := svc.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(repo.inserted))
	}
	if repo.inserted[0].RecordedAt.IsZero() {
		t.Error("RecordedAt must be stamped")
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != "created" {
		t.Errorf("expected dedup mark, got %v", dedup.marked)
	}
}

func TestEventService_Record_DuplicateSkipped(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newEventSvc(repo, &stubDedup{dupResult: true})

	if err := svc.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("duplicate should be silently skipped, got: %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Error("duplicate must not be inserted")
	}
}

func TestEventService_Record_DedupCheckError_RecordsAnyway(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newEventSvc(repo, &stubDedup{dupErr: errors.New("redis down")})

	if err := svc.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("dedup failure must not block recording: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatal("event must be recorded when dedup check fails")
	}
}

func TestEventService_Record_InsertFailureSurfaces(t *testing.T) {
	dedup := &stubDedup{}
	svc := newEventSvc(&stubEventRepo{insertErr: errStoreDown}, dedup)

	if err := svc.Record(context.Background(), sampleEvent()); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if len(dedup.marked) != 0 {
		t.Error("failed insert must not be marked as processed")
	}
}

func TestEventService_Record_Validation(t *testing.T) {
	svc := newEventSvc(&stubEventRepo{}, &stubDedup{})

	noOrder := sampleEvent()
	noOrder.OrderID = 0
	badType := sampleEvent()
	badType.Type = "teleported"

	for name, e := range map[string]domain.OrderEvent{"no order": noOrder, "bad type": badType} {
		var verr *domain.ValidationError
		if err := svc.Record(context.Background(), e); !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}
