package injected

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind is the kind of a ProvideEvent.
type EventKind string

const (
	// EventRequest marks that a key entered the resolver's work queue.
	EventRequest EventKind = "request"
	// EventProvide marks that a key's provider finished (successfully
	// or not) and the value (or error) was cached into the scope.
	EventProvide EventKind = "provide"
)

// ProvideEvent is a single observable step of a resolution: a request
// for a key, or the completion of that key's provider.
type ProvideEvent struct {
	ID    string
	Trace []string
	Kind  EventKind
	Data  any
	Err   error
}

// EventDistributor retains every event it has ever emitted and fans
// each new event out to live subscribers. A callback registered after
// some events have already fired first replays that history, in
// order, before observing anything new — so no subscriber can ever see
// a gap at the front of the stream.
//
// Emission is synchronous: Emit does not return until every registered
// callback has run, and callbacks run in registration order.
type EventDistributor struct {
	mu        sync.Mutex
	history   []ProvideEvent
	listeners []*listener
}

type listener struct {
	id string
	cb func(ProvideEvent)
}

// NewEventDistributor creates an empty distributor.
func NewEventDistributor() *EventDistributor {
	return &EventDistributor{}
}

// Register adds cb as a subscriber, immediately replaying every event
// emitted so far (in original order), and returns a token that
// Unregister accepts to remove it.
func (d *EventDistributor) Register(cb func(ProvideEvent)) string {
	d.mu.Lock()
	id := uuid.NewString()
	replay := make([]ProvideEvent, len(d.history))
	copy(replay, d.history)
	d.listeners = append(d.listeners, &listener{id: id, cb: cb})
	d.mu.Unlock()

	for _, ev := range replay {
		cb(ev)
	}
	return id
}

// Unregister removes a previously registered callback. Unregistering a
// token that is unknown, or already removed, is a no-op.
func (d *EventDistributor) Unregister(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Emit appends ev to the retained history and synchronously calls
// every currently registered listener, in registration order.
func (d *EventDistributor) Emit(ev ProvideEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	d.mu.Lock()
	d.history = append(d.history, ev)
	listeners := make([]*listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, l := range listeners {
		l.cb(ev)
	}
}

// History returns a copy of every event emitted so far.
func (d *EventDistributor) History() []ProvideEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ProvideEvent, len(d.history))
	copy(out, d.history)
	return out
}
