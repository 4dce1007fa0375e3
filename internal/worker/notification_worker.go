package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/events"
)

// EventConsumer processes events off the request path.
type EventConsumer interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker hands published events to a consumer on background goroutines,
// so slow webhooks never hold up a moderation request.
type NotificationWorker struct {
	consumer events.EventHandler
	queue    chan events.Event
	workers  int
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(consumer EventConsumer, dispatcher events.Dispatcher, workers, queueSize int, logger *zap.Logger) *NotificationWorker {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		consumer: consumer.Handle,
		queue:    make(chan events.Event, queueSize),
		workers:  workers,
		timeout:  30 * time.Second,
		logger:   logger,
	}
	if dispatcher != nil {
		for _, eventType := range consumer.EventTypes() {
			dispatcher.Subscribe(eventType, w.enqueue)
		}
	}
	return w
}

// enqueue never blocks; a full queue drops the event with a warning.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("submission_id", event.SubmissionID))
	}
	return nil
}

// Start launches the worker goroutines. They drain the queue until ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event := <-w.queue:
					w.process(ctx, event)
				}
			}
		}()
	}
}

// Wait blocks until every worker goroutine has returned.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) process(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.consumer(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("submission_id", event.SubmissionID),
			zap.Error(err))
	}
}
