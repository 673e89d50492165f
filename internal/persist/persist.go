package persist

import (
	"context"
	"log"

	"github.com/akenozll/restoransiparis2/internal/orders"
)

// State is the whole in-memory world as one snapshot. In-memory state
// stays authoritative for the process lifetime; the store is a
// best-effort key-value save/load.
type State struct {
	Tables       []orders.Table       `json:"tables"`
	Catalog      []orders.CatalogItem `json:"catalog"`
	Orders       []orders.Order       `json:"orders"`
	OrderCounter int                  `json:"order_counter"`
}

type Store interface {
	// Load returns (nil, nil) when nothing has been saved yet.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
}

// Writer pushes snapshots to a Store from a background goroutine.
// Enqueue never blocks and newer snapshots replace queued ones; a
// failed save is logged and dropped, never surfaced to the mutation.
type Writer struct {
	store  Store
	reqs   chan *State
	closed chan struct{}
}

func NewWriter(store Store) *Writer {
	w := &Writer{store: store, reqs: make(chan *State, 1), closed: make(chan struct{})}
	go w.loop()
	return w
}

func (w *Writer) loop() {
	defer close(w.closed)
	for st := range w.reqs {
		if err := w.store.Save(context.Background(), st); err != nil {
			log.Printf("persist: save: %v", err)
		}
	}
}

func (w *Writer) Enqueue(st *State) {
	for {
		select {
		case w.reqs <- st:
			return
		default:
			// stale snapshot queued, replace it
			select {
			case <-w.reqs:
			default:
			}
		}
	}
}

// Close flushes the pending snapshot and stops the goroutine.
func (w *Writer) Close() {
	close(w.reqs)
	<-w.closed
}
