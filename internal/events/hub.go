package events

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans bus events out to connected admin dashboards as JSON frames.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]*websocket.Conn
	next  int64
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]*websocket.Conn)}
}

func (h *Hub) Register(conn *websocket.Conn) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	h.conns[id] = conn
	return id
}

func (h *Hub) Unregister(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.conns[id]; ok && conn != nil {
		_ = conn.Close()
		delete(h.conns, id)
	}
}

// Broadcast writes the event to every connection; a failed write evicts the
// connection rather than failing the broadcast.
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	conns := make(map[int64]*websocket.Conn, len(h.conns))
	for id, conn := range h.conns {
		conns[id] = conn
	}
	h.mu.RUnlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(e); err != nil {
			h.Unregister(id)
		}
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Run drains a bus subscription into the hub until cancel is called. Meant to
// run as a goroutine from the bootstrap.
func (h *Hub) Run(bus *Bus) func() {
	ch, cancel := bus.Subscribe()
	go func() {
		for e := range ch {
			h.Broadcast(e)
		}
	}()
	return cancel
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.conns {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.conns, id)
	}
}
