package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/befoodie/pos-backend/monitoring"
)

// writeWait bounds how long one stalled display can hold up its room.
const writeWait = 5 * time.Second

type room struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]string // conn -> role
}

// Hub fans events out to connected displays, one room per tenant. It is an
// explicit instance constructed at startup and injected into everything that
// publishes; there is no package-global hub. Each room carries its own lock
// so a slow client in one room never delays another tenant's publishes.
type Hub struct {
	mu    sync.Mutex
	rooms map[uint]*room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]*room)}
}

func (h *Hub) room(tenantID uint) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[tenantID]
	if !ok {
		r = &room{conns: make(map[*websocket.Conn]string)}
		h.rooms[tenantID] = r
	}
	return r
}

// Register adds a connection to its tenant's room.
func (h *Hub) Register(tenantID uint, conn *websocket.Conn, role string) {
	r := h.room(tenantID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = role
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(tenantID uint, conn *websocket.Conn) {
	r := h.room(tenantID)
	r.mu.Lock()
	delete(r.conns, conn)
	r.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connections in a tenant's room.
func (h *Hub) ClientCount(tenantID uint) int {
	r := h.room(tenantID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Publish sends an event to every display in the tenant's room.
// Fire-and-forget: a slow or dead connection loses the message and a
// marshalling failure drops it; neither ever propagates to the caller.
func (h *Hub) Publish(tenantID uint, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		monitoring.EventsDropped.Inc()
		log.Printf("realtime: marshal %s failed: %v", event, err)
		return
	}

	monitoring.EventsPublished.WithLabelValues(event).Inc()

	r := h.room(tenantID)
	r.mu.Lock()
	defer r.mu.Unlock()

	for conn := range r.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			monitoring.EventsDropped.Inc()
			log.Printf("realtime: send %s to tenant %d client failed: %v", event, tenantID, err)
		}
	}
}
