// Package events fans the simulation's activity stream out to registered
// viewers. Miners, users and the bridge report what they do as formatted
// strings; the hub turns each report into a timestamped Event and delivers
// it to every viewer that is currently registered.
package events

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Events a viewer hasn't consumed yet are buffered. Websocket writes can
// take long enough that an unbuffered channel would lose events.
const eventBuffer = 100

// Event is one timestamped entry in the activity stream. Source is the
// component that reported it ("state", "worker", "bridge", "user 1").
type Event struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// Parse builds an Event from a component report, splitting the leading
// "source: " prefix the ledger packages put on every message.
func Parse(s string) Event {
	source, message, found := strings.Cut(s, ": ")
	if !found {
		source, message = "sim", s
	}

	return Event{
		Time:    time.Now(),
		Source:  source,
		Message: message,
	}
}

// Events maintains a mapping of unique id and channels so viewers can
// register and receive the stream.
type Events struct {
	m  map[string]chan Event
	mu sync.RWMutex
}

// New constructs an events hub for registering viewers.
func New() *Events {
	return &Events{
		m: make(map[string]chan Event),
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	evt.m[id] = make(chan Event, eventBuffer)
	return evt.m[id]
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send delivers an event to every registered viewer. Send will not block
// waiting for a receiver on any given channel. An event with a zero time
// is stamped on delivery.
func (evt *Events) Send(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- e:
		default:
		}
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}
