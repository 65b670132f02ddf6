package event

import (
	"context"
	"errors"
	"sync"

	"github.com/aquaportal/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements shared.EventBus with in-process pub/sub.
// Before Start, Publish dispatches synchronously. Once started, events are
// queued and dispatched by a background worker so callers never wait on
// slow handlers such as the Kafka forwarder.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler

	logger *zap.Logger
	// state guards running and queue so Stop never closes the queue under
	// a concurrent Publish.
	state   sync.RWMutex
	queue   chan envelope
	running bool
	stopped bool
	wg      sync.WaitGroup
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// NewInMemoryEventBus creates a new in-memory event bus. queueSize bounds
// the number of events waiting for dispatch once started.
func NewInMemoryEventBus(logger *zap.Logger, queueSize int) *InMemoryEventBus {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
		queue:    make(chan envelope, queueSize),
	}
}

// Publish hands events to every subscribed handler. Handler failures are
// logged and never returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		if !b.enqueue(ctx, event) {
			b.dispatch(ctx, event)
		}
	}
	return nil
}

// enqueue reports false when the bus is stopped or the queue is full
func (b *InMemoryEventBus) enqueue(ctx context.Context, event shared.DomainEvent) bool {
	b.state.RLock()
	defer b.state.RUnlock()
	if !b.running {
		return false
	}
	select {
	case b.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
		return true
	default:
		b.logger.Warn("event queue full, dispatching inline",
			zap.String("event_type", event.EventType()),
		)
		return false
	}
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Start launches the dispatch worker. A stopped bus cannot be restarted.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.state.Lock()
	defer b.state.Unlock()
	if b.stopped {
		return errors.New("event bus already stopped")
	}
	if b.running {
		return nil
	}
	b.running = true
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for env := range b.queue {
			b.dispatch(env.ctx, env.event)
		}
	}()
	b.logger.Info("event bus started")
	return nil
}

// Stop drains queued events and waits for the worker, or returns when ctx
// is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.state.Lock()
	if !b.running {
		b.state.Unlock()
		return nil
	}
	b.running = false
	b.stopped = true
	close(b.queue)
	b.state.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typed := b.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	result = append(result, typed...)
	return append(result, b.wildcard...)
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.handlersFor(event.EventType()) {
		if err := b.safeHandle(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) safeHandle(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
