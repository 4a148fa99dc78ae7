package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(func(c Change) { got = append(got, "first:"+c.ID) })
	bus.Subscribe(func(c Change) { got = append(got, "second:"+c.ID) })

	bus.Notify(Change{Entity: EntityTransaction, Op: OpCreate, ID: "t1"})
	assert.Equal(t, []string{"first:t1", "second:t1"}, got)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(func(Change) { calls++ })

	bus.Notify(Change{})
	unsubscribe()
	unsubscribe()
	bus.Notify(Change{})

	assert.Equal(t, 1, calls)
}

func TestHandlerMaySubscribeDuringNotify(t *testing.T) {
	bus := NewBus()
	late := 0
	bus.Subscribe(func(Change) {
		bus.Subscribe(func(Change) { late++ })
	})

	bus.Notify(Change{})
	assert.Equal(t, 0, late)
	bus.Notify(Change{})
	assert.Equal(t, 1, late)
}

func TestDiscard(t *testing.T) {
	var n Notifier = Discard{}
	assert.NotPanics(t, func() { n.Notify(Change{Entity: EntityAccount}) })
}
