package console

import (
	"sync"

	"github.com/user/log-console-tui/pkg/models"
)

const subscriberBuffer = 1024

// EventKind names a console notification
type EventKind string

const (
	EventInsert   EventKind = "insert"
	EventSelect   EventKind = "select"
	EventDeselect EventKind = "deselect"
)

// Event is published after an entry is admitted or the selection changes.
// Entry is a copy taken at publish time; it is the zero value for deselect.
type Event struct {
	Kind  EventKind
	Entry models.Entry
}

// emitter fans events out to subscribers without ever blocking the console.
type emitter struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	next        int
	dropped     int64
}

func newEmitter() *emitter {
	return &emitter{subscribers: make(map[int]chan Event)}
}

func (em *emitter) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = subscriberBuffer
	}
	ch := make(chan Event, buffer)

	em.mu.Lock()
	id := em.next
	em.next++
	em.subscribers[id] = ch
	em.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			em.mu.Lock()
			defer em.mu.Unlock()
			if sub, ok := em.subscribers[id]; ok {
				delete(em.subscribers, id)
				close(sub)
			}
		})
	}
}

// publish drops the event for any subscriber whose buffer is full.
func (em *emitter) publish(ev Event) {
	em.mu.Lock()
	defer em.mu.Unlock()

	for _, ch := range em.subscribers {
		select {
		case ch <- ev:
		default:
			em.dropped++
		}
	}
}

func (em *emitter) droppedCount() int64 {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return em.dropped
}
