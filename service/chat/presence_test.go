package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresence(hooks ...TransitionHook) (*Presence, *Registry) {
	reg := NewRegistry(8)
	router := NewRouter(reg, NewGroups())
	return NewPresence(reg, router, 64, hooks...), reg
}

func TestPresenceSingleOnlineOnConnectBurst(t *testing.T) {
	p, _ := newTestPresence()
	observer := newTestClient("observer", 4096)
	p.OnConnect(observer)
	drain(t, observer)

	const n = 100
	var wg sync.WaitGroup
	start := make(chan struct{})
	emitted := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			emitted <- p.OnConnect(newTestClient("alice", 8))
		}()
	}
	close(start)
	wg.Wait()
	close(emitted)

	count := 0
	for e := range emitted {
		if e {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{StatusOnline}, statusEvents(drain(t, observer), "alice"))
}

func TestPresenceOfflineOnlyOnLastDisconnect(t *testing.T) {
	p, reg := newTestPresence()
	observer := newTestClient("observer", 4096)
	p.OnConnect(observer)

	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = newTestClient("bob", 8)
		p.OnConnect(clients[i])
	}
	drain(t, observer)

	for _, c := range clients[:4] {
		assert.False(t, p.OnDisconnect(c))
	}
	assert.Empty(t, statusEvents(drain(t, observer), "bob"))
	assert.True(t, p.Online("bob"))

	assert.True(t, p.OnDisconnect(clients[4]))
	assert.Equal(t, []string{StatusOffline}, statusEvents(drain(t, observer), "bob"))
	assert.Equal(t, 0, reg.Count("bob"))
}

func TestPresenceRacingConnectDisconnect(t *testing.T) {
	p, reg := newTestPresence()
	observer := newTestClient("observer", 1<<16)
	p.OnConnect(observer)
	drain(t, observer)

	// one connection stays live throughout, so no transition may ever appear
	anchor := newTestClient("erin", 8)
	p.OnConnect(anchor)
	drain(t, observer)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("erin", 8)
			p.OnConnect(c)
			p.OnDisconnect(c)
		}()
	}
	wg.Wait()

	assert.Empty(t, statusEvents(drain(t, observer), "erin"))
	assert.Equal(t, 1, reg.Count("erin"))
}

func TestPresenceTransitionsAlternate(t *testing.T) {
	p, reg := newTestPresence()
	observer := newTestClient("observer", 1<<16)
	p.OnConnect(observer)
	drain(t, observer)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("frank", 8)
			p.OnConnect(c)
			p.OnDisconnect(c)
		}()
	}
	wg.Wait()

	got := statusEvents(drain(t, observer), "frank")
	require.NotEmpty(t, got)
	for i, s := range got {
		if i%2 == 0 {
			assert.Equal(t, StatusOnline, s)
		} else {
			assert.Equal(t, StatusOffline, s)
		}
	}
	assert.Equal(t, StatusOffline, got[len(got)-1])
	assert.Equal(t, 0, reg.Count("frank"))
}

func TestPresenceUnknownDisconnectIsNoop(t *testing.T) {
	p, _ := newTestPresence()
	assert.False(t, p.OnDisconnect(newTestClient("ghost", 1)))
}

func TestPresenceHooksRunInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []Transition
	done := make(chan struct{}, 4)
	hook := HookFunc(func(_ context.Context, tr Transition) error {
		mu.Lock()
		seen = append(seen, tr)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	p, _ := newTestPresence(hook)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	c := newTestClient("gina", 1)
	p.OnConnect(c)
	p.OnDisconnect(c)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("hook not called")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Transition{
		{Identity: "gina", Status: StatusOnline},
		{Identity: "gina", Status: StatusOffline},
	}, seen)
}
