package events

import (
	"sync"
	"time"
)

type Type string

const (
	BookingCreated          Type = "booking.created"
	BookingConfirmed        Type = "booking.confirmed"
	PaymentRequestSent      Type = "payment_request.sent"
	PaymentRequestUpdated   Type = "payment_request.updated"
	PaymentRequestCancelled Type = "payment_request.cancelled"
	PaymentRequestExpired   Type = "payment_request.expired"
	PaymentReceived         Type = "payment.received"
)

// Event is a notification to observers, never a carrier of state: consumers
// that care about current values re-read the store.
type Event struct {
	Type    Type           `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// New stamps an event with the current time.
func New(t Type, payload map[string]any) Event {
	return Event{Type: t, At: time.Now().UTC(), Payload: payload}
}

// Bus is the single-process fan-out for domain events. Publish never blocks:
// a subscriber that stops draining loses events rather than stalling the
// booking or payment path that published them.
type Bus struct {
	mu   sync.RWMutex
	subs map[int64]chan Event
	next int64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int64]chan Event)}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a buffered listener. The returned cancel must be called
// exactly once; it closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
