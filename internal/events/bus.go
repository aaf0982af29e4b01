package events

import (
	"sync"

	"vesync-bridge/internal/logger"
	"vesync-bridge/internal/types"
)

// Bus fans events out to subscribers over channels
type Bus struct {
	mu   sync.RWMutex
	subs []chan *types.Event
}

// New creates a new event bus
func New() *Bus {
	return &Bus{}
}

// Subscribe returns a channel that receives all published events
func (b *Bus) Subscribe(buffer int) chan *types.Event {
	ch := make(chan *types.Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *Bus) Unsubscribe(ch chan *types.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish delivers an event to all subscribers. Slow subscribers drop
// events rather than block the publisher.
func (b *Bus) Publish(event *types.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub <- event:
		default:
			logger.Debug("Dropping %s/%s event for slow subscriber", event.Source, event.Type)
		}
	}
}
