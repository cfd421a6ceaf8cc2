package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub keeps the websocket connections watching each auction.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room // auctionID -> room
}

type room struct {
	mu    sync.RWMutex
	conns map[*clientConn]string // conn -> userID
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*room)} }

func (h *Hub) Join(auctionID, userID string, c *clientConn) {
	// h.mu stays held so Leave cannot drop the room in between
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[auctionID]
	if !ok {
		r = &room{conns: make(map[*clientConn]string)}
		h.rooms[auctionID] = r
	}

	r.mu.Lock()
	r.conns[c] = userID
	r.mu.Unlock()
}

// Leave removes and closes c. The room is dropped once it is empty.
func (h *Hub) Leave(auctionID string, c *clientConn) {
	h.mu.Lock()
	r, ok := h.rooms[auctionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	r.mu.Lock()
	delete(r.conns, c)
	if len(r.conns) == 0 {
		delete(h.rooms, auctionID)
	}
	r.mu.Unlock()
	h.mu.Unlock()

	_ = c.rawConn.Close()
}

// Size reports how many connections watch an auction.
func (h *Hub) Size(auctionID string) int {
	h.mu.Lock()
	r, ok := h.rooms[auctionID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Broadcast is called by the Redis subscriber. Connections that fail the
// write are dropped from the room.
func (h *Hub) Broadcast(auctionID string, msg []byte) {
	h.mu.Lock()
	r, ok := h.rooms[auctionID]
	h.mu.Unlock()
	if !ok {
		return
	}

	// snapshot, then do the I/O outside the lock
	r.mu.RLock()
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.Leave(auctionID, c)
		}
	}
}

// AuctionIDs lists the auctions that currently have at least one watcher.
func (h *Hub) AuctionIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}
