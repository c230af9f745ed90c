package chat

import (
	"context"
	"hash/maphash"
	"sync"

	"PolyChat/logger"
	"PolyChat/service/metrics"

	"go.uber.org/zap"
)

const presenceStripes = 64

// Transition is an online/offline flip of one identity.
type Transition struct {
	Identity string
	Status   string
}

// TransitionHook receives transitions after they were fanned out, in emission order.
type TransitionHook interface {
	OnTransition(ctx context.Context, t Transition) error
}

type HookFunc func(ctx context.Context, t Transition) error

func (f HookFunc) OnTransition(ctx context.Context, t Transition) error { return f(ctx, t) }

// Presence derives online/offline from the registry's per-identity count.
// Register or unregister, the count check and the emission run under one
// per-identity stripe lock, so transitions of an identity never interleave.
type Presence struct {
	reg    *Registry
	router *Router

	seed    maphash.Seed
	stripes [presenceStripes]sync.Mutex

	hooks []TransitionHook
	queue chan Transition
}

func NewPresence(reg *Registry, router *Router, hookQueue int, hooks ...TransitionHook) *Presence {
	if hookQueue <= 0 {
		hookQueue = 1024
	}
	return &Presence{
		reg:    reg,
		router: router,
		seed:   maphash.MakeSeed(),
		hooks:  hooks,
		queue:  make(chan Transition, hookQueue),
	}
}

func (p *Presence) lock(identity string) *sync.Mutex {
	m := &p.stripes[maphash.String(p.seed, identity)%presenceStripes]
	m.Lock()
	return m
}

// OnConnect registers c and emits online if it is the identity's first connection.
func (p *Presence) OnConnect(c *Client) bool {
	m := p.lock(c.Identity)
	defer m.Unlock()

	if !p.reg.Register(c) {
		return false
	}
	p.emit(Transition{Identity: c.Identity, Status: StatusOnline})
	return true
}

// OnDisconnect unregisters c and emits offline if it was the identity's last
// connection. Unknown clients are logged and ignored.
func (p *Presence) OnDisconnect(c *Client) bool {
	m := p.lock(c.Identity)
	defer m.Unlock()

	identity, last, found := p.reg.Unregister(c)
	if !found {
		logger.Warn("registry consistency: unregister of unknown connection",
			zap.String("conn", c.ID), zap.String("identity", c.Identity))
		return false
	}
	if !last {
		return false
	}
	p.emit(Transition{Identity: identity, Status: StatusOffline})
	return true
}

func (p *Presence) emit(t Transition) {
	metrics.PresenceTransitions.WithLabelValues(t.Status).Inc()
	logger.Info("presence", zap.String("identity", t.Identity), zap.String("status", t.Status))
	p.router.ToAll(UserStatusChanged{Username: t.Identity, Status: t.Status})

	if len(p.hooks) == 0 {
		return
	}
	select {
	case p.queue <- t:
	default:
		metrics.DroppedHooks.Inc()
		logger.Warn("presence hook queue full, transition dropped",
			zap.String("identity", t.Identity), zap.String("status", t.Status))
	}
}

// Run feeds queued transitions to the hooks until ctx is done.
func (p *Presence) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-p.queue:
			for _, h := range p.hooks {
				if err := h.OnTransition(ctx, t); err != nil {
					logger.Error("presence hook failed",
						zap.String("identity", t.Identity), zap.String("status", t.Status), zap.Error(err))
				}
			}
		}
	}
}

// Online reports the derived presence of identity.
func (p *Presence) Online(identity string) bool {
	return p.reg.Count(identity) > 0
}
