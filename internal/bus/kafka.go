package bus

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes every envelope to a kafka topic through an
// async writer. Publish only enqueues; a dedicated goroutine drains
// the inbox so the mutation path never waits on the broker.
type KafkaSink struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewKafkaSink(brokers []string, topic string, buf int) *KafkaSink {
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (s *KafkaSink) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				s.closeInbox()
				for m := range s.inbox {
					_ = s.w.WriteMessages(context.Background(), m)
				}
				_ = s.w.Close()
				close(s.closeCh)
				return
			case m, ok := <-s.inbox:
				if !ok {
					_ = s.w.Close()
					close(s.closeCh)
					return
				}
				if err := s.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("kafka sink: write: %v", err)
				}
			}
		}
	}()
}

func (s *KafkaSink) Publish(ev orders.Envelope) {
	m := kafka.Message{
		Key:   []byte(ev.EventType),
		Value: MustMarshal(ev),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.EventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case s.inbox <- m:
	default:
		log.Printf("kafka sink: inbox full, dropping %s", ev.EventType)
	}
}

// Close flushes the inbox and stops the drain goroutine. Close and a
// context cancellation may race during shutdown, so the inbox is only
// ever closed once.
func (s *KafkaSink) Close()      { s.closeInbox() }
func (s *KafkaSink) WaitClosed() { <-s.closeCh }

func (s *KafkaSink) closeInbox() { s.closeOnce.Do(func() { close(s.inbox) }) }

// Handler must return nil only when the message may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// Consumer reads the event topic with a small worker pool and manual
// offset commits.
type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					errs <- err
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					errs <- err
				}
			}
		}()
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain worker errors without blocking the dispatcher
		select {
		case e := <-errs:
			log.Printf("consumer worker: %v", e)
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}
