package events

import (
	"sync"
	"sync/atomic"
	"time"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
)

const DefaultBuffer = 32

// Publisher is the side of the bus that services depend on.
type Publisher interface {
	Publish(evt domain.ChangeEvent)
}

// Bus fans change events out to subscribers. Each subscriber has its own
// buffered channel; when it is full the event is dropped for that subscriber.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan domain.ChangeEvent
	nextID  uint64
	buffer  int
	dropped atomic.Int64
	closed  bool
	now     func() time.Time
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[uint64]chan domain.ChangeEvent),
		buffer: buffer,
		now:    time.Now,
	}
}

func (b *Bus) Publish(evt domain.ChangeEvent) {
	if evt.At.IsZero() {
		evt.At = b.now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
			logger.Debug("event dropped for slow subscriber", "subscriber", id, "type", evt.Type)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes it
// and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan domain.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.ChangeEvent, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
