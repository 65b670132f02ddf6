package event

import (
	"context"
	"testing"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAggregate struct {
	shared.BaseAggregateRoot
}

func newTestAggregate(eventTypes ...string) *testAggregate {
	a := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	for _, et := range eventTypes {
		e := shared.NewBaseDomainEvent(et, "Test", a.ID, uuid.New())
		a.AddDomainEvent(&e)
	}
	return a
}

type countingPublisher struct {
	batches [][]shared.DomainEvent
	err     error
}

func (p *countingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.batches = append(p.batches, events)
	return p.err
}

func TestPublishDomainEvents(t *testing.T) {
	pub := &countingPublisher{}
	first := newTestAggregate("A", "B")
	empty := newTestAggregate()
	second := newTestAggregate("C")

	PublishDomainEvents(context.Background(), pub, first, empty, second)

	require.Len(t, pub.batches, 2)
	assert.Len(t, pub.batches[0], 2)
	assert.Equal(t, "C", pub.batches[1][0].EventType())
	assert.Empty(t, first.GetDomainEvents())
	assert.Empty(t, second.GetDomainEvents())
}

func TestPublishDomainEvents_ErrorsAreSwallowed(t *testing.T) {
	pub := &countingPublisher{err: assert.AnError}
	agg := newTestAggregate("A")

	assert.NotPanics(t, func() {
		PublishDomainEvents(context.Background(), pub, agg)
	})
	assert.Empty(t, agg.GetDomainEvents())

	PublishDomainEvents(context.Background(), nil, newTestAggregate("A"))
}

func TestPublishDomainEvents_ThroughBus(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 8)
	handler := newTestHandler()
	bus.Subscribe(handler)

	PublishDomainEvents(context.Background(), bus, newTestAggregate("BillIssued"))
	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, "BillIssued", handler.getHandled()[0].EventType())
}
