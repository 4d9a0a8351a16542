package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaeso/delivery-api/internal/api/metrics"
	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes order events to a fixed set of workers using consistent
// hashing on the order ID, guaranteeing per-order event ordering.
type Dispatcher struct {
	workers []chan domain.OrderEvent
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.OrderEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after recording whatever is still buffered in their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends an event to the worker responsible for its order.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event domain.OrderEvent) {
	idx := d.shardIndex(event.OrderID)
	metrics.OrderEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	d.workers[idx] <- event
}

// EnqueueBatch enqueues multiple events preserving per-order ordering.
func (d *Dispatcher) EnqueueBatch(events []domain.OrderEvent) {
	for _, e := range events {
		d.Enqueue(e)
	}
}

// shardIndex maps an order ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(orderID), 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, label, ch)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.handle(ctx, id, label, event)
		}
	}
}

// drain records the events left in ch once the dispatcher is shutting down.
func (d *Dispatcher) drain(id int, label string, ch <-chan domain.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.handle(ctx, id, label, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, id int, label string, event domain.OrderEvent) {
	metrics.OrderEventsQueueDepth.WithLabelValues(label).Dec()
	start := time.Now()
	err := d.service.Record(ctx, event)
	metrics.OrderEventProcessingDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OrderEventsProcessedTotal.WithLabelValues(string(event.Type), "error").Inc()
		d.log.Error().Err(err).
			Uint("order_id", event.OrderID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("event recording failed")
		return
	}
	metrics.OrderEventsProcessedTotal.WithLabelValues(string(event.Type), "ok").Inc()
}
