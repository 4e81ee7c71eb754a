package realtime

import (
	"fmt"
	"sync"
)

// UserKey and VenueKey name the interest groups a connection may join.
func UserKey(userID int64) string { return fmt.Sprintf("user:%d", userID) }

func VenueKey(venueID int64) string { return fmt.Sprintf("venue:%d", venueID) }

// Registry maps subscriber keys to the set of live connections interested
// in them. It holds no durable state: clients rejoin on reconnect.
//
// Join/Leave/LeaveAll and Resolve on the same key are linearizable: a
// Resolve that begins after a Join returns observes the connection, and a
// Resolve that begins after a LeaveAll returns never does.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]map[*Conn]struct{}
	keys map[*Conn]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string]map[*Conn]struct{}),
		keys: make(map[*Conn]map[string]struct{}),
	}
}

// Join registers interest. Joining the same key twice with the same
// connection is a no-op.
func (r *Registry) Join(key string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[key]
	if !ok {
		set = make(map[*Conn]struct{})
		r.subs[key] = set
	}
	set[c] = struct{}{}
	ks, ok := r.keys[c]
	if !ok {
		ks = make(map[string]struct{})
		r.keys[c] = ks
	}
	ks[key] = struct{}{}
}

func (r *Registry) Leave(key string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(key, c)
}

// LeaveAll removes the connection from every key it joined. Invoked when
// a connection closes; empty key sets are dropped so the map never grows
// with the lifetime of the server.
func (r *Registry) LeaveAll(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.keys[c] {
		r.remove(key, c)
	}
}

// remove assumes r.mu is held for writing.
func (r *Registry) remove(key string, c *Conn) {
	if set, ok := r.subs[key]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.subs, key)
		}
	}
	if ks, ok := r.keys[c]; ok {
		delete(ks, key)
		if len(ks) == 0 {
			delete(r.keys, c)
		}
	}
}

// Resolve returns a snapshot of the live connections for a key. An empty
// result is the normal no-subscribers case, not an error.
func (r *Registry) Resolve(key string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.subs[key]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
