// internal/event/event.go
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind uint8

const (
	// PanicTriggered fires on the Idle -> Panicking edge, after the escape
	// keypress was sent and the key block installed.
	PanicTriggered Kind = iota + 1

	// BlockReleased fires when the key block is lifted, on cooldown expiry
	// or forced on stop.
	BlockReleased

	// ProcessLost fires once when the consecutive miss streak reaches the
	// configured limit. ProcessFound fires on the next successful sample.
	ProcessLost
	ProcessFound
)

func (k Kind) String() string {
	switch k {
	case PanicTriggered:
		return "panic_triggered"
	case BlockReleased:
		return "block_released"
	case ProcessLost:
		return "process_lost"
	case ProcessFound:
		return "process_found"
	default:
		return "unknown"
	}
}

// Event is one watchdog transition. Total and Threshold are only meaningful
// for PanicTriggered.
type Event struct {
	ID   uuid.UUID
	Kind Kind
	At   time.Time

	Total     uint64
	Threshold uint64
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that stops draining loses events rather than stalling the poll loop.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel that receives all future events.
// buf bounds how far the subscriber may lag before dropping.
func (b *Bus) Subscribe(buf int) <-chan Event {
	ch := make(chan Event, buf)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	return ch
}

// Publish assigns the event an ID and delivers it to every subscriber
// with room in its buffer.
func (b *Bus) Publish(e Event) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is full; drop.
		}
	}

	return e
}
