package bus

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// newUnreachableSink builds a sink whose writer fails fast, so the
// drain goroutine runs its full shutdown path without a broker.
func newUnreachableSink(buf int) *KafkaSink {
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP("127.0.0.1:1"),
			Topic:        "restaurant.events",
			Balancer:     &kafka.Hash{},
			Async:        true,
			MaxAttempts:  1,
			WriteTimeout: 100 * time.Millisecond,
			BatchTimeout: 10 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Shutdown calls Close before cancelling the drain context, often with
// messages still in flight. Both paths race to finish the inbox; the
// sink must survive that in either order.
func TestKafkaSinkCloseThenCancel(t *testing.T) {
	s := newUnreachableSink(64)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	for i := 0; i < 32; i++ {
		s.Publish(env("orderCreated"))
	}
	s.Close()
	cancel()

	select {
	case <-s.closeCh:
	case <-time.After(5 * time.Second):
		t.Fatal("sink did not finish shutting down")
	}

	// a second Close must be a no-op
	s.Close()
}

func TestKafkaSinkCancelOnly(t *testing.T) {
	s := newUnreachableSink(8)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	s.Publish(env("tableChanged"))
	cancel()

	select {
	case <-s.closeCh:
	case <-time.After(5 * time.Second):
		t.Fatal("sink did not finish shutting down")
	}
}
