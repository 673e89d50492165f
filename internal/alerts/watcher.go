// Package alerts follows the broadcast stream from kafka and raises
// low-stock alerts, so back office tooling does not need a connection
// to the web process.
package alerts

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/akenozll/restoransiparis2/internal/bus"
	"github.com/akenozll/restoransiparis2/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
)

type Watcher struct {
	mu      sync.Mutex
	alerted map[int]bool // item id -> currently below threshold
}

func NewWatcher() *Watcher {
	return &Watcher{alerted: make(map[int]bool)}
}

// HandleEvent is the kafka consumer handler. Only catalog events
// matter; everything else is committed and skipped.
func (w *Watcher) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	switch env.EventType {
	case orders.EventCatalogChanged, orders.EventCatalogSnapshot:
	default:
		return nil
	}
	menu, err := bus.UnwrapPayload[orders.Menu](env.Payload)
	if err != nil {
		return err
	}
	w.Check(append(menu.Food, menu.Drink...))
	return nil
}

// Check logs once per threshold crossing, not once per event.
func (w *Watcher) Check(items []orders.CatalogItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, it := range items {
		low := it.Stock <= it.MinStock
		switch {
		case low && !w.alerted[it.ID]:
			w.alerted[it.ID] = true
			if it.Stock == 0 {
				log.Printf("alert: %q (id=%d) is out of stock", it.Name, it.ID)
			} else {
				log.Printf("alert: %q (id=%d) low stock: %d left (min %d)", it.Name, it.ID, it.Stock, it.MinStock)
			}
		case !low && w.alerted[it.ID]:
			delete(w.alerted, it.ID)
			log.Printf("alert cleared: %q (id=%d) back to %d", it.Name, it.ID, it.Stock)
		}
	}
}
