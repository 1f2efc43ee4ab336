package loader

import (
	"sync"
	"time"
)

// Event reports a module state transition.
type Event struct {
	At         time.Time
	Err        error // set when To is Failed
	Module     string
	Generation uint64
	From       State
	To         State
}

type broker struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event
	next   uint64
	closed bool
}

func (b *broker) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.subs == nil {
		b.subs = make(map[uint64]chan Event)
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			_, live := b.subs[id]
			delete(b.subs, id)
			b.mu.Unlock()
			if live {
				close(ch)
			}
		})
	}
}

// publish never blocks: a subscriber with a full buffer misses the event.
func (b *broker) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *broker) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}
