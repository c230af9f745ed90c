package chat

import (
	"hash/maphash"
	"sync"
	"sync/atomic"

	"PolyChat/service/metrics"
)

const defaultShardCount = 32

type identityShard struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Client // identity -> conn id -> client
}

type connShard struct {
	mu     sync.RWMutex
	byConn map[string]*Client // conn id -> client
}

// Registry maps live clients to identities in both directions.
//
// Lock order: identity shard, then connection shard. Both indices for a
// client are updated while holding both locks, so every reader sees either
// the state before or after a register/unregister, never a half-applied one.
// An identity key exists only while its client set is non-empty.
type Registry struct {
	seed       maphash.Seed
	mask       uint64
	identities []*identityShard
	conns      []*connShard

	size       atomic.Int64
	identCount atomic.Int64
}

// NewRegistry builds a registry with shards rounded up to a power of two.
func NewRegistry(shards int) *Registry {
	n := 1
	if shards <= 0 {
		shards = defaultShardCount
	}
	for n < shards {
		n <<= 1
	}
	r := &Registry{
		seed:       maphash.MakeSeed(),
		mask:       uint64(n - 1),
		identities: make([]*identityShard, n),
		conns:      make([]*connShard, n),
	}
	for i := 0; i < n; i++ {
		r.identities[i] = &identityShard{byUser: make(map[string]map[string]*Client)}
		r.conns[i] = &connShard{byConn: make(map[string]*Client)}
	}
	return r
}

func (r *Registry) identityShardOf(identity string) *identityShard {
	return r.identities[maphash.String(r.seed, identity)&r.mask]
}

func (r *Registry) connShardOf(connID string) *connShard {
	return r.conns[maphash.String(r.seed, connID)&r.mask]
}

// Register adds c under c.Identity and reports whether the identity had no
// live connections before. Registering the same client twice changes nothing.
func (r *Registry) Register(c *Client) (first bool) {
	is := r.identityShardOf(c.Identity)
	cs := r.connShardOf(c.ID)

	is.mu.Lock()
	cs.mu.Lock()
	set := is.byUser[c.Identity]
	if set == nil {
		set = make(map[string]*Client, 1)
		is.byUser[c.Identity] = set
		first = true
		r.identCount.Add(1)
		metrics.OnlineIdentities.Inc()
	}
	if _, ok := set[c.ID]; !ok {
		set[c.ID] = c
		cs.byConn[c.ID] = c
		r.size.Add(1)
		metrics.LiveConnections.Inc()
	}
	cs.mu.Unlock()
	is.mu.Unlock()
	return first
}

// Unregister removes c and returns the identity it belonged to, whether it
// was that identity's last connection and whether c was registered at all.
func (r *Registry) Unregister(c *Client) (identity string, last bool, found bool) {
	is := r.identityShardOf(c.Identity)
	cs := r.connShardOf(c.ID)

	is.mu.Lock()
	defer is.mu.Unlock()
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cur, ok := cs.byConn[c.ID]
	if !ok || cur != c {
		return "", false, false
	}
	delete(cs.byConn, c.ID)
	r.size.Add(-1)
	metrics.LiveConnections.Dec()

	set := is.byUser[c.Identity]
	delete(set, c.ID)
	if len(set) == 0 {
		delete(is.byUser, c.Identity)
		r.identCount.Add(-1)
		metrics.OnlineIdentities.Dec()
		last = true
	}
	return c.Identity, last, true
}

// Count is the number of live connections of identity; 0 when unknown.
func (r *Registry) Count(identity string) int {
	is := r.identityShardOf(identity)
	is.mu.RLock()
	defer is.mu.RUnlock()
	return len(is.byUser[identity])
}

// ConnectionsOf returns a snapshot of identity's live clients.
func (r *Registry) ConnectionsOf(identity string) []*Client {
	is := r.identityShardOf(identity)
	is.mu.RLock()
	defer is.mu.RUnlock()
	set := is.byUser[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) IdentityOf(connID string) (string, bool) {
	cs := r.connShardOf(connID)
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.byConn[connID]
	if !ok {
		return "", false
	}
	return c.Identity, true
}

// All snapshots every live client, one shard at a time.
func (r *Registry) All() []*Client {
	out := make([]*Client, 0, r.size.Load())
	for _, cs := range r.conns {
		cs.mu.RLock()
		for _, c := range cs.byConn {
			out = append(out, c)
		}
		cs.mu.RUnlock()
	}
	return out
}

// Len is the number of live connections.
func (r *Registry) Len() int { return int(r.size.Load()) }

// Identities is the number of identities with at least one live connection.
func (r *Registry) Identities() int { return int(r.identCount.Load()) }

// OnlineIdentities snapshots every identity with a live connection.
func (r *Registry) OnlineIdentities() []string {
	out := make([]string, 0, r.identCount.Load())
	for _, is := range r.identities {
		is.mu.RLock()
		for id := range is.byUser {
			out = append(out, id)
		}
		is.mu.RUnlock()
	}
	return out
}
