package bus

import (
	"time"

	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/google/uuid"
)

// Sink is one binding of the event bus. Publish must not block the
// caller: every binding queues or drops.
type Sink interface {
	Publish(ev orders.Envelope)
}

// Bus fans every committed mutation out to the attached bindings.
// The engine emits while holding its lock, so sinks observe events in
// commit order.
type Bus struct {
	producer string
	sinks    []Sink
}

func New(producer string, sinks ...Sink) *Bus {
	return &Bus{producer: producer, sinks: sinks}
}

func (b *Bus) Attach(s Sink) { b.sinks = append(b.sinks, s) }

// Envelope builds an event without emitting it; the engine uses this
// for per-client connect snapshots.
func (b *Bus) Envelope(eventType string, payload any) orders.Envelope {
	return orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     b.producer,
		Payload:      MustMarshal(payload),
	}
}

func (b *Bus) Emit(eventType string, payload any) {
	ev := b.Envelope(eventType, payload)
	for _, s := range b.sinks {
		s.Publish(ev)
	}
}
