package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventProbeCompleted EventType = "probe_completed"
	EventStateChanged   EventType = "state_changed"
)

// Event is one observation emitted by the scheduler.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Backend   string
	Loss      int
	Average   int
	State     string
}

// Collector consumes events from a buffered channel in its own goroutine.
type Collector struct {
	eventCh chan Event
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Emit sends an event without blocking; when the buffer is full the event
// is dropped so a slow collector can never stall a probe worker.
func (c *Collector) Emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("metrics buffer full, event dropped",
			slog.String("type", string(event.Type)),
			slog.String("backend", event.Backend))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventProbeCompleted:
		c.metrics.RecordProbe(event.Backend, event.Loss, event.Average)

	case EventStateChanged:
		c.metrics.RecordTransition(event.Backend, event.State)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot(driver string) Snapshot {
	return c.metrics.Snapshot(driver)
}
