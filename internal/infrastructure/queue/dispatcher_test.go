package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (s *recordingService) Record(_ context.Context, e domain.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingService) recorded() []domain.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderEvent(nil), s.events...)
}

var quiet = zerolog.New(io.Discard)

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingService{}, quiet)

	for id := uint(1); id < 50; id++ {
		first := d.shardIndex(id)
		assert.Equal(t, first, d.shardIndex(id))
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 4)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingService{}, quiet)
	assert.Len(t, d.workers, defaultWorkers)
}

func TestDispatcher_PreservesPerOrderOrdering(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(3, svc, quiet)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.OrderEventType{
		domain.OrderEventCreated, domain.OrderEventReassigned, domain.OrderEventDelivered,
	}
	var batch []domain.OrderEvent
	for _, typ := range types {
		for id := uint(1); id <= 5; id++ {
			batch = append(batch, domain.OrderEvent{OrderID: id, Type: typ})
		}
	}
	d.EnqueueBatch(batch)

	require.Eventually(t, func() bool { return len(svc.recorded()) == len(batch) },
		time.Second, 5*time.Millisecond)
	cancel()
	d.Wait()

	perOrder := map[uint][]domain.OrderEventType{}
	for _, e := range svc.recorded() {
		perOrder[e.OrderID] = append(perOrder[e.OrderID], e.Type)
	}
	for id := uint(1); id <= 5; id++ {
		assert.Equal(t, types, perOrder[id], "order %d", id)
	}
}

func TestDispatcher_FailuresDoNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("mongo down")}
	d := NewDispatcher(1, svc, quiet)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.OrderEvent{OrderID: 1, Type: domain.OrderEventCreated})
	d.Enqueue(domain.OrderEvent{OrderID: 1, Type: domain.OrderEventDelivered})

	require.Eventually(t, func() bool { return len(svc.recorded()) == 2 },
		time.Second, 5*time.Millisecond)
	cancel()
	d.Wait()
}

func TestDispatcher_DrainsBufferedEventsOnShutdown(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(2, svc, quiet)
	for id := uint(1); id <= 10; id++ {
		d.Enqueue(domain.OrderEvent{OrderID: id, Type: domain.OrderEventCreated})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	assert.Len(t, svc.recorded(), 10)
}
