package realtime

import (
	"sync"

	"github.com/google/uuid"

	"chat-relay/domain"
)

type connSet map[uuid.UUID]*Conn

// Registry is the process-wide presence and room-subscription state.
//
// Presence maps a user to the SET of their live connections: one logical
// identity may be reachable through several devices at once, and removing
// one connection must never evict the others. Rooms map a RoomID to the
// connections currently subscribed; the joined index is the reverse view
// used to tear a connection out of every room on disconnect.
//
// All three maps are guarded by one mutex; entries are removed the moment
// their last member leaves so the registry never leaks empty sets.
type Registry struct {
	mu       sync.RWMutex
	presence map[string]connSet
	rooms    map[domain.RoomID]connSet
	joined   map[uuid.UUID]map[domain.RoomID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		presence: make(map[string]connSet),
		rooms:    make(map[domain.RoomID]connSet),
		joined:   make(map[uuid.UUID]map[domain.RoomID]struct{}),
	}
}

// Register records a live connection under a user identity. Registering
// the same connection twice is a no-op, which keeps repeated authenticate
// events from duplicating presence.
func (r *Registry) Register(userID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presence[userID]; !ok {
		r.presence[userID] = make(connSet)
	}
	r.presence[userID][c.ID] = c
}

// Unregister removes the connection from presence and from every room it
// joined. Only the disconnecting member is removed; the user entry goes
// away only when its last connection does.
func (r *Registry) Unregister(userID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conns, ok := r.presence[userID]; ok {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(r.presence, userID)
		}
	}

	for roomID := range r.joined[c.ID] {
		r.leaveLocked(c, roomID)
	}
	delete(r.joined, c.ID)
}

// ConnectionsFor retrieves all live connections of a user. Returns nil if
// the user has none.
func (r *Registry) ConnectionsFor(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns, ok := r.presence[userID]
	if !ok {
		return nil
	}
	active := make([]*Conn, 0, len(conns))
	for _, c := range conns {
		active = append(active, c)
	}
	return active
}

// Join subscribes the connection to a room, creating the room entry on the
// fly. Joining twice leaves exactly one subscription.
func (r *Registry) Join(c *Conn, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(connSet)
	}
	r.rooms[roomID][c.ID] = c

	if _, ok := r.joined[c.ID]; !ok {
		r.joined[c.ID] = make(map[domain.RoomID]struct{})
	}
	r.joined[c.ID][roomID] = struct{}{}
}

// Leave unsubscribes the connection from a room. Safe to call for rooms
// never joined.
func (r *Registry) Leave(c *Conn, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(c, roomID)
	if joined, ok := r.joined[c.ID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.joined, c.ID)
		}
	}
}

func (r *Registry) leaveLocked(c *Conn, roomID domain.RoomID) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, c.ID)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// RoomConnections retrieves all connections currently subscribed to a
// room. Returns nil if the room doesn't exist or has no members.
func (r *Registry) RoomConnections(roomID domain.RoomID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	subscribed := make([]*Conn, 0, len(members))
	for _, c := range members {
		subscribed = append(subscribed, c)
	}
	return subscribed
}

// Stats reports current presence for the periodic reporter.
func (r *Registry) Stats() (users, connections, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conns := range r.presence {
		connections += len(conns)
	}
	return len(r.presence), connections, len(r.rooms)
}
