package httpx

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/akenozll/restoransiparis2/internal/bus"
	"golang.org/x/net/websocket"
)

const keepAliveInterval = 30 * time.Second

// streamSSE delivers the broadcast stream as Server-Sent Events. The
// client receives the full snapshot first, then deltas, in commit
// order.
func (h *Handler) streamSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := h.Engine.Subscribe()
	defer client.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev := <-client.Events():
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.EventType, bus.MustMarshal(ev)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// websocketHandler delivers the same stream as JSON frames over a
// websocket, for panels that prefer a two-way transport.
func (h *Handler) websocketHandler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()

		client := h.Engine.Subscribe()
		defer client.Close()

		// drain the read side so we notice the peer going away
		done := make(chan struct{})
		go func() {
			_, _ = io.Copy(io.Discard, conn)
			close(done)
		}()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-done:
				return
			case <-keepAlive.C:
				if err := websocket.JSON.Send(conn, map[string]string{"event_type": "ping"}); err != nil {
					return
				}
			case ev := <-client.Events():
				if err := websocket.JSON.Send(conn, ev); err != nil {
					log.Printf("websocket: send %s: %v", ev.EventType, err)
					return
				}
			}
		}
	})
}
