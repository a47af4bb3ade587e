// Package hub implements the room-scoped broadcast layer for live displays.
// Clients join an event's public room (and, for staff connections, its admin
// room) and receive typed fire-and-forget messages. There is no delivery
// guarantee: every rotation tick supersedes the previous payload, so a
// client that misses a frame self-corrects on the next tick or on reconnect.
package hub

import (
	"log"
	"sync"
)

// Sender delivers one named event with a JSON-encodable payload to a single
// connected client. The websocket transport implements it; tests use fakes.
type Sender interface {
	Send(event string, payload any) error
}

// client tracks one connection and the set of rooms it has joined.
type client struct {
	sender Sender
	rooms  map[string]struct{}
}

// Hub is a mutex-guarded registry of clients and room memberships. All
// methods are safe for concurrent use; connect, disconnect, subscribe and
// publish race freely with each other. Room names are not validated here:
// subscribing to a room for a non-existent event is a silent success, and
// event existence is enforced at the HTTP layer instead.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client            // clientID -> connection state
	rooms   map[string]map[string]struct{} // room -> set of clientIDs
}

// New constructs an empty Hub.
func New() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Connect registers a client with an empty room set. Reconnecting under an
// existing ID replaces the previous sender and drops its memberships.
func (h *Hub) Connect(clientID string, s Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[clientID]; ok {
		h.dropLocked(clientID, old)
	}
	h.clients[clientID] = &client{sender: s, rooms: make(map[string]struct{})}
}

// Disconnect discards all room membership for a client. Disconnecting an
// unknown client is a no-op; in-flight broadcasts to it are simply dropped.
func (h *Hub) Disconnect(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		h.dropLocked(clientID, c)
	}
}

// dropLocked removes a client from every room it joined and from the
// registry. Callers must hold the write lock.
func (h *Hub) dropLocked(clientID string, c *client) {
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, clientID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.clients, clientID)
}

// Subscribe joins the client to a room. It is idempotent and a no-op for
// clients that never connected or already disconnected.
func (h *Hub) Subscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	c.rooms[room] = struct{}{}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[clientID] = struct{}{}
}

// Unsubscribe removes the client from a room. Leaving a room the client
// never joined is a no-op success.
func (h *Hub) Unsubscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish fans the event out to every client currently subscribed to the
// room. Senders are snapshotted under the read lock and written to outside
// it so a slow connection never blocks the registry. Send failures are
// logged and otherwise ignored; the failing client corrects itself on the
// next tick or gets reaped by its read loop.
func (h *Hub) Publish(room, event string, payload any) {
	h.mu.RLock()
	members := h.rooms[room]
	senders := make([]Sender, 0, len(members))
	for clientID := range members {
		if c, ok := h.clients[clientID]; ok {
			senders = append(senders, c.sender)
		}
	}
	h.mu.RUnlock()

	for _, s := range senders {
		if err := s.Send(event, payload); err != nil {
			log.Printf("hub: send %s to room %s failed: %v", event, room, err)
		}
	}
}
