package injected

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDistributorReplaysHistoryToLateSubscribers(t *testing.T) {
	d := NewEventDistributor()
	d.Emit(ProvideEvent{Kind: EventRequest, Data: "a"})
	d.Emit(ProvideEvent{Kind: EventProvide, Data: "a"})

	var seen []ProvideEvent
	d.Register(func(ev ProvideEvent) { seen = append(seen, ev) })

	require.Len(t, seen, 2)
	assert.Equal(t, "a", seen[0].Data)
	assert.Equal(t, "a", seen[1].Data)

	d.Emit(ProvideEvent{Kind: EventRequest, Data: "b"})
	require.Len(t, seen, 3)
	assert.Equal(t, "b", seen[2].Data)
}

func TestEventDistributorUnregisterIsIdempotent(t *testing.T) {
	d := NewEventDistributor()
	calls := 0
	id := d.Register(func(ev ProvideEvent) { calls++ })

	d.Emit(ProvideEvent{Kind: EventRequest})
	assert.Equal(t, 1, calls)

	d.Unregister(id)
	d.Unregister(id) // no-op, must not panic

	d.Emit(ProvideEvent{Kind: EventRequest})
	assert.Equal(t, 1, calls)
}

func TestEventDistributorOrderedEmission(t *testing.T) {
	d := NewEventDistributor()
	var order []int
	d.Register(func(ev ProvideEvent) { order = append(order, 1) })
	d.Register(func(ev ProvideEvent) { order = append(order, 2) })
	d.Register(func(ev ProvideEvent) { order = append(order, 3) })

	d.Emit(ProvideEvent{Kind: EventRequest})
	assert.Equal(t, []int{1, 2, 3}, order)
}
