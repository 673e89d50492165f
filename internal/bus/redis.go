package bus

import (
	"context"
	"log"
	"time"

	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors every envelope onto a redis pub/sub channel so
// out-of-process consumers can follow state changes without kafka.
// Same contract as the kafka sink: Publish enqueues, a goroutine
// pushes.
type RedisSink struct {
	rdb     *redis.Client
	channel string
	inbox   chan []byte
	closeCh chan struct{}
}

func NewRedisSink(addr, channel string, buf int) *RedisSink {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisSink{
		rdb:     rdb,
		channel: channel,
		inbox:   make(chan []byte, buf),
		closeCh: make(chan struct{}),
	}
}

func (s *RedisSink) Start(ctx context.Context) {
	go func() {
		defer close(s.closeCh)
		for {
			select {
			case <-ctx.Done():
				_ = s.rdb.Close()
				return
			case b, ok := <-s.inbox:
				if !ok {
					_ = s.rdb.Close()
					return
				}
				pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := s.rdb.Publish(pctx, s.channel, b).Err(); err != nil {
					log.Printf("redis sink: publish: %v", err)
				}
				cancel()
			}
		}
	}()
}

func (s *RedisSink) Publish(ev orders.Envelope) {
	select {
	case s.inbox <- MustMarshal(ev):
	default:
		log.Printf("redis sink: inbox full, dropping %s", ev.EventType)
	}
}

func (s *RedisSink) Close()      { close(s.inbox) }
func (s *RedisSink) WaitClosed() { <-s.closeCh }
