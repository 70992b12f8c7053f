package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"focustrack/app"
	"focustrack/internal"

	"github.com/gorilla/websocket"
)

// EventHub fans tracker events out to WebSocket clients so presentation
// layers can follow the live activity without polling.
type EventHub struct {
	tracker *app.Tracker
	logger  *internal.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewEventHub creates a hub
func NewEventHub(tracker *app.Tracker, logger *internal.Logger) *EventHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EventHub{
		tracker: tracker,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// Run subscribes to the tracker and broadcasts until the context ends.
func (h *EventHub) Run(ctx context.Context) {
	events, unsubscribe := h.tracker.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(event)
		}
	}
}

func (h *EventHub) broadcast(event app.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *EventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// HandleWebSocket upgrades HTTP to WebSocket
func (h *EventHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// Local daemon; the API binds to localhost.
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Read loop: drop the client once it goes away.
	go func() {
		defer func() {
			h.mu.Lock()
			if h.clients[conn] {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
