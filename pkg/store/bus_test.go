package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	var first, second []Event
	bus.Subscribe(func(e Event) { first = append(first, e) })
	bus.Subscribe(func(e Event) { second = append(second, e) })

	bus.Publish(Event{Type: EventMessageCreated, SessionID: "s1"})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, "s1", first[0].SessionID)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	var got []Event
	unsubscribe := bus.Subscribe(func(e Event) { got = append(got, e) })

	bus.Publish(Event{Type: EventTicketCreated})
	unsubscribe()
	bus.Publish(Event{Type: EventTicketDeleted})

	assert.Len(t, got, 1)
	assert.Equal(t, EventTicketCreated, got[0].Type)
}

func TestBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	unsubscribe := bus.Subscribe(func(Event) {})
	unsubscribe()
	assert.NotPanics(t, func() { unsubscribe() })

	// отписка одного не задевает других
	var got int
	bus.Subscribe(func(Event) { got++ })
	bus.Publish(Event{Type: EventMessagesRead})
	assert.Equal(t, 1, got)
}
