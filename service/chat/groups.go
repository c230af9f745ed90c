package chat

import "sync"

// Groups is the room membership index of live clients.
type Groups struct {
	mu      sync.RWMutex
	members map[string]map[*Client]struct{} // group -> clients
	joined  map[*Client]map[string]struct{} // client -> groups
}

func NewGroups() *Groups {
	return &Groups{
		members: make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]map[string]struct{}),
	}
}

// Join adds c to every given group.
func (g *Groups) Join(c *Client, groups ...string) {
	if len(groups) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range groups {
		if id == "" {
			continue
		}
		g.add(c, id)
	}
}

// add skips shut down clients so a late join cannot outlive Leave.
func (g *Groups) add(c *Client, group string) {
	if c.closed() {
		return
	}
	m := g.members[group]
	if m == nil {
		m = make(map[*Client]struct{})
		g.members[group] = m
	}
	m[c] = struct{}{}

	j := g.joined[c]
	if j == nil {
		j = make(map[string]struct{})
		g.joined[c] = j
	}
	j[group] = struct{}{}
}

func (g *Groups) remove(c *Client, group string) {
	if m := g.members[group]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(g.members, group)
		}
	}
	if j := g.joined[c]; j != nil {
		delete(j, group)
		if len(j) == 0 {
			delete(g.joined, c)
		}
	}
}

// JoinClients adds the given clients to group.
func (g *Groups) JoinClients(group string, clients []*Client) {
	if group == "" || len(clients) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range clients {
		g.add(c, group)
	}
}

// PartIdentity removes every client of identity from group.
func (g *Groups) PartIdentity(identity, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.members[group] {
		if c.Identity == identity {
			g.remove(c, group)
		}
	}
}

// Drop tears a group down entirely.
func (g *Groups) Drop(group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.members[group] {
		if j := g.joined[c]; j != nil {
			delete(j, group)
			if len(j) == 0 {
				delete(g.joined, c)
			}
		}
	}
	delete(g.members, group)
}

// Leave removes c from all of its groups.
func (g *Groups) Leave(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id := range g.joined[c] {
		if m := g.members[id]; m != nil {
			delete(m, c)
			if len(m) == 0 {
				delete(g.members, id)
			}
		}
	}
	delete(g.joined, c)
}

// Members snapshots the clients currently joined to group.
func (g *Groups) Members(group string) []*Client {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m := g.members[group]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}

func (g *Groups) GroupsOf(c *Client) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.joined[c]))
	for id := range g.joined[c] {
		out = append(out, id)
	}
	return out
}

// Len is the number of non-empty groups.
func (g *Groups) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}
