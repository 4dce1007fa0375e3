package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var handlerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gallery_event_handler_runs_total",
	Help: "Event handler invocations by event type and outcome.",
}, []string{"type", "outcome"})

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes submission events to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher runs subscribers on the publishing goroutine.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish invokes every handler subscribed to event.Type. Handler errors and panics are
// logged and never reach the publisher; only a cancelled ctx stops the remaining handlers.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome := "ok"
		if err := d.run(ctx, handler, event); err != nil {
			outcome = "error"
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("submission_id", event.SubmissionID),
				zap.String("shop", event.Shop),
				zap.Error(err))
		}
		handlerRunsTotal.WithLabelValues(string(event.Type), outcome).Inc()
	}
	return nil
}

func (d *inMemoryDispatcher) run(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
