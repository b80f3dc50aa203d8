package www

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"warebot/engine"
)

const (
	clientBuffer      = 64
	keepaliveInterval = 25 * time.Second
)

type SSEEvent struct {
	Event string
	Data  string
}

// EventHub fans events out to connected SSE clients. Broadcast delivers
// directly on the caller's goroutine; a client whose buffer is full has the
// event dropped and its drop count bumped, so one stalled browser cannot
// back up the simulation.
type EventHub struct {
	mu      sync.Mutex
	nextID  int
	clients map[int]*sseClient

	stopOnce sync.Once
	done     chan struct{}
}

type sseClient struct {
	ch      chan SSEEvent
	dropped int
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[int]*sseClient),
		done:    make(chan struct{}),
	}
}

// Start launches the keepalive ticker; everything else runs on caller
// goroutines.
func (h *EventHub) Start() {
	go h.keepalive()
}

func (h *EventHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *EventHub) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.Broadcast("keepalive", "ping")
		}
	}
}

// Broadcast delivers an event to every connected client, dropping it for
// clients that cannot keep up.
func (h *EventHub) Broadcast(event, data string) {
	evt := SSEEvent{Event: event, Data: data}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.ch <- evt:
		default:
			c.dropped++
			if c.dropped == 1 {
				log.Printf("sse: client %d not keeping up, dropping events", id)
			}
		}
	}
}

func (h *EventHub) register() (int, chan SSEEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	c := &sseClient{ch: make(chan SSEEvent, clientBuffer)}
	h.clients[h.nextID] = c
	return h.nextID, c.ch
}

func (h *EventHub) unregister(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.ch)
	}
}

func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SetupEngineListeners forwards every bus event to SSE clients. The event
// name is the journal identifier and the data is the payload as JSON.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.Subscribe(func(evt engine.Event) {
		data, err := json.Marshal(evt.Payload)
		if err != nil {
			return
		}
		h.Broadcast(evt.Type.Name(), string(data))
	})
}

// SSEHandler serves the SSE endpoint.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := h.register()
	defer h.unregister(id)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case evt := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				log.Printf("sse: client %d write: %v", id, err)
				return
			}
			flusher.Flush()
		}
	}
}
