package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const (
	defaultMaxAttempts = 5
	drainTimeout       = 5 * time.Second
)

// Publisher delivers a single order event.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

type job struct {
	event   model.OrderEvent
	attempt int
}

// EventDispatcher publishes order events off the request path with a pool of
// workers. Failed deliveries are retried on a ticker a bounded number of times.
type EventDispatcher struct {
	publisher     Publisher
	retryInterval time.Duration
	maxAttempts   int
	workers       int
	logger        *slog.Logger

	jobs    chan job
	pending []job
	pendMu  sync.Mutex

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewEventDispatcher constructs the dispatcher worker pool.
func NewEventDispatcher(publisher Publisher, buffer, workers int, retryInterval time.Duration, logger *slog.Logger) *EventDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = workers
	}
	if retryInterval <= 0 {
		retryInterval = time.Second
	}
	return &EventDispatcher{
		publisher:     publisher,
		retryInterval: retryInterval,
		maxAttempts:   defaultMaxAttempts,
		workers:       workers,
		logger:        logger,
		jobs:          make(chan job, buffer),
	}
}

// Enqueue schedules event for delivery without blocking. It reports false
// when the buffer is full and the event was dropped.
func (d *EventDispatcher) Enqueue(event model.OrderEvent) bool {
	select {
	case d.jobs <- job{event: event}:
		return true
	default:
		return false
	}
}

// Start launches background processing.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}

	d.wg.Add(1)
	go d.retryLoop(runCtx)
}

// Stop cancels processing, delivers what is still buffered or waiting for a
// retry, and waits for all goroutines to finish.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.flushPending()
}

// Pending returns the number of deliveries waiting for a retry.
func (d *EventDispatcher) Pending() int {
	d.pendMu.Lock()
	defer d.pendMu.Unlock()
	return len(d.pending)
}

func (d *EventDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx)
			return
		case j := <-d.jobs:
			d.handle(ctx, j)
		}
	}
}

func (d *EventDispatcher) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	for {
		select {
		case j := <-d.jobs:
			if err := d.publisher.Publish(drainCtx, j.event); err != nil {
				d.logger.Error("order event lost on shutdown",
					slog.String("type", string(j.event.Type)),
					slog.String("order", j.event.OrderNumber),
					slog.String("error", err.Error()),
				)
			}
		default:
			return
		}
	}
}

// flushPending makes one last delivery attempt for events awaiting a retry.
func (d *EventDispatcher) flushPending() {
	d.pendMu.Lock()
	pending := d.pending
	d.pending = nil
	d.pendMu.Unlock()

	if len(pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	lost := 0
	for _, j := range pending {
		if err := d.publisher.Publish(ctx, j.event); err != nil {
			lost++
			d.logger.Error("order event lost on shutdown",
				slog.String("type", string(j.event.Type)),
				slog.String("order", j.event.OrderNumber),
				slog.Int("attempts", j.attempt+1),
				slog.String("error", err.Error()),
			)
		}
	}
	if lost > 0 {
		d.logger.Error("pending order events dropped on shutdown", slog.Int("count", lost), slog.Int("pending", len(pending)))
	}
}

func (d *EventDispatcher) retryLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.requeue()
		}
	}
}

func (d *EventDispatcher) requeue() {
	d.pendMu.Lock()
	defer d.pendMu.Unlock()

	kept := d.pending[:0]
	for _, j := range d.pending {
		select {
		case d.jobs <- j:
		default:
			kept = append(kept, j)
		}
	}
	d.pending = kept
}

func (d *EventDispatcher) handle(ctx context.Context, j job) {
	err := d.publisher.Publish(ctx, j.event)
	if err == nil {
		return
	}

	j.attempt++
	if j.attempt >= d.maxAttempts {
		d.logger.Error("order event dropped",
			slog.String("type", string(j.event.Type)),
			slog.String("order", j.event.OrderNumber),
			slog.Int("attempts", j.attempt),
			slog.String("error", err.Error()),
		)
		return
	}

	d.logger.Warn("order event publish failed",
		slog.String("order", j.event.OrderNumber),
		slog.Int("attempt", j.attempt),
		slog.String("error", err.Error()),
	)
	d.pendMu.Lock()
	d.pending = append(d.pending, j)
	d.pendMu.Unlock()
}
