package http

import (
	"sync"
	"time"
)

// Message is one lifecycle event as sent to stream clients.
type Message struct {
	Type  string    `json:"type"`
	RunID string    `json:"run_id,omitempty"`
	Time  time.Time `json:"time"`
	Data  any       `json:"data,omitempty"`
}

type subscriber chan Message

// broadcaster fans messages out to stream clients without blocking the
// dialogue: a client whose buffer is full misses the message. The last few
// messages are replayed to new clients.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[subscriber]struct{}
	recent []Message
	limit  int
}

func newBroadcaster(limit int) *broadcaster {
	return &broadcaster{subs: make(map[subscriber]struct{}), limit: limit}
}

// subscribe returns the replay and a channel for everything after it.
func (b *broadcaster) subscribe() ([]Message, subscriber) {
	ch := make(subscriber, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return append([]Message(nil), b.recent...), ch
}

func (b *broadcaster) unsubscribe(ch subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *broadcaster) publish(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.recent = append(b.recent, m)
	if len(b.recent) > b.limit {
		b.recent = b.recent[len(b.recent)-b.limit:]
	}
	for sub := range b.subs {
		select {
		case sub <- m:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub)
	}
}
