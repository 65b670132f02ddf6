// Package testutil provides helpers shared by the portal's integration tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventRecorder is a shared.EventHandler that keeps every event it sees.
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewEventRecorder creates a recorder for eventTypes. No types means every
// event.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

// EventTypes returns the event types this recorder subscribes to.
func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

// Handle records the event.
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, event)
	return r.err
}

// Handled returns a copy of the recorded events.
func (r *EventRecorder) Handled() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.handled))
	copy(out, r.handled)
	return out
}

// Types returns the recorded event types in arrival order.
func (r *EventRecorder) Types() []string {
	events := r.Handled()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}

// CountOf returns how many events of eventType were recorded.
func (r *EventRecorder) CountOf(eventType string) int {
	n := 0
	for _, e := range r.Handled() {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// SetError makes Handle fail with err.
func (r *EventRecorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Reset clears the recorded events and any configured error.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = nil
	r.err = nil
}

// TestEvent is a minimal domain event.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates a test event concerning customerID.
func NewTestEvent(eventType string, customerID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), customerID),
		Data:            "test-data",
	}
}

// WaitForCondition polls condition until it holds or timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

// WaitForEvent waits until the recorder has seen at least count events of
// eventType.
func WaitForEvent(t *testing.T, r *EventRecorder, eventType string, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return r.CountOf(eventType) >= count
	}, timeout, 10*time.Millisecond)
}

var _ shared.EventHandler = (*EventRecorder)(nil)
