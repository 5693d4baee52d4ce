package bus

import (
	"sync"
	"sync/atomic"
)

// Event is a state change broadcast to subscribers.
type Event struct {
	Name    string
	Payload any
	Source  string // mutation source, see store.WithSource
	Seq     int64
}

// EventHandler receives broadcast events. Handlers run on the publisher's
// goroutine and must not block.
type EventHandler func(Event)

// Bus fans library events out to the desktop shell and /events subscribers.
type Bus struct {
	seq atomic.Int64

	// Event subscribers (subscriber ID → handler)
	subscribers map[string]EventHandler
	subMu       sync.RWMutex
}

func New() *Bus {
	return &Bus{subscribers: make(map[string]EventHandler)}
}

// Subscribe registers an event subscriber under id, replacing any previous
// handler with the same id.
func (b *Bus) Subscribe(id string, handler EventHandler) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subscribers[id] = handler
}

// Unsubscribe removes an event subscriber.
func (b *Bus) Unsubscribe(id string) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	delete(b.subscribers, id)
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	return len(b.subscribers)
}

// Broadcast stamps event with the next sequence number and sends it to all
// subscribers.
func (b *Bus) Broadcast(event Event) {
	event.Seq = b.seq.Add(1)

	b.subMu.RLock()
	defer b.subMu.RUnlock()
	for _, handler := range b.subscribers {
		handler(event)
	}
}
