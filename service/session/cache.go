package session

import (
	"context"
	"sync"
	"time"

	"PolyChat/logger"
	"PolyChat/tools/errs"
	"PolyChat/tools/security"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Verifier checks a session token and returns the identity it was issued for
// together with its expiry. A zero expiry means the token never expires.
type Verifier interface {
	Verify(ctx context.Context, token string) (identity string, exp time.Time, err error)
}

type entry struct {
	identity string
	exp      time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

// Cache memoizes verified tokens until they expire.
type Cache struct {
	verifier Verifier
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group
}

func NewCache(v Verifier) *Cache {
	return &Cache{
		verifier: v,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
}

// Resolve returns the identity encoded by token. Failed verifications are not cached.
func (c *Cache) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errs.ErrSessionRequired.Wrap()
	}

	now := c.now()
	c.mu.RLock()
	e, ok := c.entries[token]
	c.mu.RUnlock()
	if ok {
		if !e.expired(now) {
			return e.identity, nil
		}
		c.evict(token, e)
	}

	v, err, _ := c.group.Do(token, func() (any, error) {
		identity, exp, err := c.verifier.Verify(context.WithoutCancel(ctx), token)
		if err != nil {
			return nil, err
		}
		ne := entry{identity: identity, exp: exp}
		if ne.expired(c.now()) {
			return nil, errs.ErrInvalidSession.WrapMsg("token expired")
		}
		c.mu.Lock()
		c.entries[token] = ne
		c.mu.Unlock()
		return identity, nil
	})
	if err != nil {
		logger.Debug("session rejected", zap.String("token", security.HashToken(token)), zap.Error(err))
		if errs.KindOf(err) != errs.KindAuth {
			err = errs.ErrInvalidSession.WrapMsg(err.Error())
		}
		return "", err
	}
	return v.(string), nil
}

// Invalidate forgets token, e.g. on logout.
func (c *Cache) Invalidate(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}

func (c *Cache) evict(token string, seen entry) {
	c.mu.Lock()
	if cur, ok := c.entries[token]; ok && cur == seen {
		delete(c.entries, token)
	}
	c.mu.Unlock()
}

// Sweep drops every entry expired at now and returns how many were removed.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for tok, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, tok)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run sweeps every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := c.Sweep(c.now()); n > 0 {
				logger.Debug("session cache swept", zap.Int("removed", n), zap.Int("left", c.Len()))
			}
		}
	}
}
