package chat

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry(4)
	a1 := newTestClient("alice", 1)
	a2 := newTestClient("alice", 1)

	assert.True(t, r.Register(a1))
	assert.False(t, r.Register(a2))
	assert.False(t, r.Register(a2), "second register of the same client adds nothing")
	assert.Equal(t, 2, r.Count("alice"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.Identities())

	id, ok := r.IdentityOf(a1.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", id)
	assert.ElementsMatch(t, []*Client{a1, a2}, r.ConnectionsOf("alice"))

	ident, last, found := r.Unregister(a1)
	assert.Equal(t, "alice", ident)
	assert.False(t, last)
	assert.True(t, found)

	_, last, found = r.Unregister(a2)
	assert.True(t, last)
	assert.True(t, found)

	assert.Equal(t, 0, r.Count("alice"))
	assert.Nil(t, r.ConnectionsOf("alice"))
	assert.Equal(t, 0, r.Identities())
	_, ok = r.IdentityOf(a1.ID)
	assert.False(t, ok)
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry(4)
	ghost := newTestClient("bob", 1)

	ident, last, found := r.Unregister(ghost)
	assert.Empty(t, ident)
	assert.False(t, last)
	assert.False(t, found)

	r.Register(ghost)
	r.Unregister(ghost)
	_, _, found = r.Unregister(ghost)
	assert.False(t, found)
	assert.Equal(t, 0, r.Count("bob"))
}

func TestRegistryCountReplay(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	r := NewRegistry(8)

	var live []*Client
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rnd.Intn(3) > 0 {
			c := newTestClient("carol", 1)
			r.Register(c)
			live = append(live, c)
		} else {
			k := rnd.Intn(len(live))
			r.Unregister(live[k])
			live = append(live[:k], live[k+1:]...)
		}
		require.Equal(t, len(live), r.Count("carol"))
	}
}

func TestRegistryNoDanglingEntries(t *testing.T) {
	r := NewRegistry(2)
	const n = 50
	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = newTestClient("dave", 1)
		r.Register(clients[i])
	}
	for _, c := range clients {
		r.Unregister(c)
	}
	for _, s := range r.identities {
		_, ok := s.byUser["dave"]
		assert.False(t, ok)
	}
	assert.Equal(t, 0, r.Len())
}

func TestRegistryConcurrentIdentities(t *testing.T) {
	r := NewRegistry(16)
	const users, perUser = 32, 20

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", u)
			cs := make([]*Client, perUser)
			for i := range cs {
				cs[i] = newTestClient(name, 1)
				r.Register(cs[i])
			}
			for i := 0; i < perUser/2; i++ {
				r.Unregister(cs[i])
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, users*perUser/2, r.Len())
	assert.Len(t, r.All(), users*perUser/2)
	for u := 0; u < users; u++ {
		assert.Equal(t, perUser/2, r.Count(fmt.Sprintf("user-%d", u)))
	}
}

func TestRegistryShardRounding(t *testing.T) {
	assert.Len(t, NewRegistry(5).identities, 8)
	assert.Len(t, NewRegistry(0).identities, defaultShardCount)
}
