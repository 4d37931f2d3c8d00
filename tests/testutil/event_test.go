package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler_Handle(t *testing.T) {
	handler := NewMockEventHandler("OrderPlaced")
	evt := NewTestEvent("OrderPlaced")

	require.NoError(t, handler.Handle(context.Background(), evt))

	assert.Equal(t, []string{"OrderPlaced"}, handler.EventTypes())
	assert.Equal(t, 1, handler.HandledCount())
	assert.Same(t, evt, handler.Handled()[0])
}

func TestMockEventHandler_SetError(t *testing.T) {
	handler := NewMockEventHandler()
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("OrderPlaced"))

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, handler.HandledCount())
}

func TestNewTestEvent(t *testing.T) {
	evt := NewTestEvent("OrderStatusChanged")

	assert.NotEqual(t, uuid.Nil, evt.EventID())
	assert.NotEqual(t, uuid.Nil, evt.AggregateID())
	assert.Equal(t, "OrderStatusChanged", evt.EventType())
	assert.Equal(t, "TestAggregate", evt.AggregateType())
	assert.WithinDuration(t, time.Now(), evt.OccurredAt(), time.Second)
}

func TestWaitForEventCount_WithEventBus(t *testing.T) {
	bus := event.NewInMemoryEventBus(nil)
	handler := NewMockEventHandler("OrderPlaced")
	bus.Subscribe(handler)

	go func() {
		_ = bus.Publish(context.Background(), NewTestEvent("OrderPlaced"), NewTestEvent("Ignored"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 1, time.Second))
	assert.Equal(t, "OrderPlaced", handler.Handled()[0].EventType())
}

func TestWaitForEventCount_Timeout(t *testing.T) {
	handler := NewMockEventHandler()

	assert.False(t, WaitForEventCount(t, handler, 1, 30*time.Millisecond))
}
