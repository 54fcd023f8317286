package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBroker fans events out within a single process. Slow subscribers
// drop events rather than block publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[chan Event]struct{}
	closed bool
}

// NewMemoryBroker creates an in-process broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[uuid.UUID]map[chan Event]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.AccountID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, accountID uuid.UUID) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	if b.subs[accountID] == nil {
		b.subs[accountID] = make(map[chan Event]struct{})
	}
	b.subs[accountID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[accountID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(b.subs, accountID)
				}
			}
			b.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}

// Close ends every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = make(map[uuid.UUID]map[chan Event]struct{})
	b.closed = true
	return nil
}
