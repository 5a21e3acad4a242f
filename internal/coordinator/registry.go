package coordinator

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Sender is the live, writable transport handle for one connection.
type Sender interface {
	Send(event, payload string) error
}

// Registry maps connection ids to transport handles and tracks the
// in-memory room membership for each connection. It is the single
// mutual-exclusion boundary for membership state: join/leave/disconnect
// mutate it while broadcasts read it, from different goroutines.
//
// Membership never touches the durable store and does not survive a
// restart; rooms come back with history but zero live members.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Sender
	names   map[string]string
	rooms   map[string]map[string]struct{} // room name -> member connection ids
	joined  map[string]map[string]struct{} // connection id -> joined room names
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]Sender),
		names:   make(map[string]string),
		rooms:   make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Register(connID string, handle Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[connID] = handle
	r.joined[connID] = make(map[string]struct{})
}

// Unregister drops the connection's handle, display name, and every
// room membership it held. Safe to call for an unknown id.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.joined[connID] {
		delete(r.rooms[room], connID)
		if len(r.rooms[room]) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.joined, connID)
	delete(r.names, connID)
	delete(r.handles, connID)
}

func (r *Registry) Handle(connID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[connID]
	return handle, ok
}

func (r *Registry) Registered(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[connID]
	return ok
}

// SetName records the display name used in log lines and presence
// entries. No-op for unregistered connections.
func (r *Registry) SetName(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[connID]; ok {
		r.names[connID] = name
	}
}

// DisplayName falls back to the connection id while no name is set.
func (r *Registry) DisplayName(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[connID]; ok && name != "" {
		return name
	}
	return connID
}

func (r *Registry) Join(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	joined, ok := r.joined[connID]
	if !ok {
		return
	}
	joined[room] = struct{}{}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]struct{})
	}
	r.rooms[room][connID] = struct{}{}
}

func (r *Registry) Leave(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.joined[connID], room)
	delete(r.rooms[room], connID)
	if len(r.rooms[room]) == 0 {
		delete(r.rooms, room)
	}
}

func (r *Registry) InRoom(connID, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][connID]
	return ok
}

// Members returns the room's current membership, sorted for
// deterministic fan-out order.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := lo.Keys(r.rooms[room])
	sort.Strings(members)
	return members
}

// RoomsOf returns the rooms the connection currently belongs to.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := lo.Keys(r.joined[connID])
	sort.Strings(rooms)
	return rooms
}

// ConnectionIDs lists every registered connection except the given ids.
func (r *Registry) ConnectionIDs(except ...string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := lo.Without(lo.Keys(r.handles), except...)
	sort.Strings(ids)
	return ids
}
