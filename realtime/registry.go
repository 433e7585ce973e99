package realtime

import "sync"

// Registry is the single shared mutable structure of the realtime core: a
// concurrent map from routing key to live connection. One instance is
// created at server start and handed by reference to every per-connection
// router. Two flavors of key coexist for the same connection: the ephemeral
// key assigned at handshake and, once the client proves identity, the
// durable account id.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Put associates key with conn, silently superseding any prior mapping.
// A reconnect under the same durable key wins over the old connection
// without closing it; the old socket keeps living until its own transport
// notices the peer is gone.
func (r *Registry) Put(key string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[key] = conn
}

func (r *Registry) Get(key string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[key]
	return conn, ok
}

// RemoveAll purges every key currently mapping to this exact connection,
// ephemeral and bound alike. It is called exactly once, synchronously, when
// the connection closes or errors. Returns how many keys were removed.
func (r *Registry) RemoveAll(conn Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, c := range r.conns {
		if c == conn {
			delete(r.conns, key)
			removed++
		}
	}
	return removed
}

// Connections snapshots the distinct live connections for broadcast fan-out.
// A connection registered under several keys appears once, so every socket
// receives exactly one copy of a broadcast.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Conn]struct{}, len(r.conns))
	conns := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		conns = append(conns, c)
	}
	return conns
}

// Keys snapshots the currently registered routing keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.conns))
	for key := range r.conns {
		keys = append(keys, key)
	}
	return keys
}

// Len reports the number of registered keys, not distinct connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
