package ids

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	g := NewGenerator(7)
	prev := g.Next()
	for i := 0; i < 20000; i++ {
		id := g.Next()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNextSurvivesClockGoingBack(t *testing.T) {
	g := NewGenerator(1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	g.now = func() time.Time { return current }

	first := g.Next()
	current = base.Add(-time.Second)
	second := g.Next()
	assert.Greater(t, second, first)
}

func TestNextConcurrentUnique(t *testing.T) {
	g := NewGenerator(3)
	const workers, per = 8, 2000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, per)
			for i := 0; i < per; i++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

func TestNodeIDIsEncoded(t *testing.T) {
	g := NewGenerator(42)
	id := g.Next()
	assert.Equal(t, int64(42), (id>>12)&0x3FF)

	assert.Equal(t, int64(1), NewGenerator(5000).nodeID)
}

func TestNextBorrowsMillisecondWhenSequenceExhausted(t *testing.T) {
	g := NewGenerator(2)
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return frozen }

	prev := g.Next()
	for i := 0; i < 3*4096; i++ {
		id := g.Next()
		require.Greater(t, id, prev)
		prev = id
	}
	assert.Greater(t, g.lastTSMS, frozen.UnixMilli())
}
