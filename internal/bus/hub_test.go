package bus

import (
	"testing"
	"time"

	"github.com/akenozll/restoransiparis2/internal/orders"
)

func env(eventType string) orders.Envelope {
	return orders.Envelope{EventID: eventType, EventType: eventType, EventVersion: 1}
}

func TestHubPreloadDeliveredFirst(t *testing.T) {
	h := NewHub(8)
	c := h.Register([]orders.Envelope{env("catalogSnapshot"), env("tableSnapshot")})
	defer c.Close()

	h.Publish(env("orderCreated"))

	want := []string{"catalogSnapshot", "tableSnapshot", "orderCreated"}
	for _, w := range want {
		select {
		case ev := <-c.Events():
			if ev.EventType != w {
				t.Fatalf("got %s, want %s", ev.EventType, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", w)
		}
	}
}

func TestHubSlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(2)
	slow := h.Register(nil)
	defer slow.Close()
	fast := h.Register(nil)
	defer fast.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(env("orderCreated"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a full client buffer blocked Publish")
	}

	// the slow client kept only its buffer's worth
	if got := len(slow.Events()); got != 2 {
		t.Errorf("slow client holds %d events, want 2", got)
	}
	if got := len(fast.Events()); got != 2 {
		t.Errorf("fast client holds %d events, want 2 (same buffer)", got)
	}
}

func TestHubCloseStopsDelivery(t *testing.T) {
	h := NewHub(8)
	c := h.Register(nil)
	c.Close()

	if got := h.ClientCount(); got != 0 {
		t.Fatalf("client count = %d after Close, want 0", got)
	}
	h.Publish(env("orderCreated")) // must not panic or deliver
	select {
	case ev := <-c.Events():
		t.Fatalf("closed client received %s", ev.EventType)
	default:
	}
}

func TestBusEnvelope(t *testing.T) {
	b := New("test-producer")
	ev := b.Envelope(orders.EventOrderCreated, map[string]int{"id": 1})
	if ev.EventID == "" {
		t.Error("missing event id")
	}
	if ev.EventType != orders.EventOrderCreated || ev.EventVersion != 1 {
		t.Errorf("envelope = %+v", ev)
	}
	if ev.Producer != "test-producer" {
		t.Errorf("producer = %q", ev.Producer)
	}
	if string(ev.Payload) != `{"id":1}` {
		t.Errorf("payload = %s", ev.Payload)
	}
}
