package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Entry", uuid.New(), uuid.New())
	return &evt
}

func TestPublishDispatchesToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{weighment.EventEntrySettled}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent(weighment.EventEntrySettled),
		testEvent(weighment.EventEntryCreated),
	))

	require.Len(t, handler.received, 1)
	assert.Equal(t, weighment.EventEntrySettled, handler.received[0].EventType())
}

func TestWildcardHandlerReceivesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent(weighment.EventEntrySettled),
		testEvent(weighment.EventEntryFlagged),
	))

	assert.Len(t, handler.received, 2)
}

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{weighment.EventEntrySettled}, err: errors.New("nope")}
	panicking := &recordingHandler{types: []string{weighment.EventEntrySettled}, panics: true}
	healthy := &recordingHandler{types: []string{weighment.EventEntrySettled}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), testEvent(weighment.EventEntrySettled)))

	assert.Len(t, healthy.received, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{weighment.EventEntrySettled}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent(weighment.EventEntrySettled)))

	assert.Empty(t, handler.received)
}

func TestDashboardInvalidatorClearsDashboardKeys(t *testing.T) {
	store := cache.NewInMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.PrefixDashboard+"plant-1", []byte("stale"), 0))
	require.NoError(t, store.Set(ctx, cache.PrefixVendor+"v1", []byte("fresh"), 0))

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewDashboardInvalidator(store, zap.NewNop()))

	require.NoError(t, bus.Publish(ctx, testEvent(weighment.EventEntrySettled)))

	raw, err := store.Get(ctx, cache.PrefixDashboard+"plant-1")
	require.NoError(t, err)
	assert.Nil(t, raw, "dashboard keys must be dropped")

	raw, err = store.Get(ctx, cache.PrefixVendor+"v1")
	require.NoError(t, err)
	assert.NotNil(t, raw, "unrelated keys survive")
}
