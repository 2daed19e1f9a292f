package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	var got []string

	unsubAll := bus.Subscribe(func(ctx context.Context, e Event) {
		got = append(got, "all:"+e.Type)
	})
	unsubTables := bus.Subscribe(func(ctx context.Context, e Event) {
		got = append(got, "tables:"+e.Type)
	}, TableStatusChanged)

	bus.Publish(context.Background(), Event{Type: TableStatusChanged})
	bus.Publish(context.Background(), Event{Type: MenuChanged})
	assert.Equal(t, []string{
		"all:" + TableStatusChanged,
		"tables:" + TableStatusChanged,
		"all:" + MenuChanged,
	}, got)

	unsubAll()
	unsubAll() // second call is a no-op
	got = nil
	bus.Publish(context.Background(), Event{Type: TableStatusChanged})
	assert.Equal(t, []string{"tables:" + TableStatusChanged}, got)
	assert.Equal(t, 1, bus.Len())

	unsubTables()
	assert.Equal(t, 0, bus.Len())
}

func TestBus_FillsOccurredAt(t *testing.T) {
	bus := NewBus()
	var received Event
	bus.Subscribe(func(ctx context.Context, e Event) { received = e })

	bus.Publish(context.Background(), Event{Type: PaymentCompleted})
	assert.False(t, received.OccurredAt.IsZero())
}

func TestBus_UnsubscribeInsideHandler(t *testing.T) {
	bus := NewBus()
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(func(ctx context.Context, e Event) {
		calls++
		unsub()
	})

	bus.Publish(context.Background(), Event{Type: MenuChanged})
	bus.Publish(context.Background(), Event{Type: MenuChanged})
	assert.Equal(t, 1, calls)
}
