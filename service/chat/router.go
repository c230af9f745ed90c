package chat

import (
	"PolyChat/logger"
	"PolyChat/service/metrics"

	"go.uber.org/zap"
)

// Router fans an event out to a computed set of live clients. Each call
// encodes the frame once and queues it without blocking; a full queue drops
// the frame for that client only.
type Router struct {
	reg    *Registry
	groups *Groups
}

func NewRouter(reg *Registry, groups *Groups) *Router {
	return &Router{reg: reg, groups: groups}
}

// ToAll delivers ev to every live client.
func (r *Router) ToAll(ev Event) int {
	return r.deliver("all", ev, r.reg.All())
}

// ToIdentity delivers ev to every live client of identity. Zero targets is not an error.
func (r *Router) ToIdentity(identity string, ev Event) int {
	return r.deliver("identity", ev, r.reg.ConnectionsOf(identity))
}

// ToGroup delivers ev to every client joined to group.
func (r *Router) ToGroup(group string, ev Event) int {
	return r.deliver("group", ev, r.groups.Members(group))
}

func (r *Router) ToClient(c *Client, ev Event) int {
	return r.deliver("client", ev, []*Client{c})
}

func (r *Router) deliver(target string, ev Event, clients []*Client) int {
	if len(clients) == 0 {
		return 0
	}
	frame, err := Encode(ev)
	if err != nil {
		logger.Error("fanout encode failed", zap.String("target", target), zap.Error(err))
		return 0
	}
	n := 0
	for _, c := range clients {
		if c.enqueue(frame) {
			n++
			continue
		}
		if !c.closed() {
			metrics.DroppedFrames.Inc()
			logger.Warn("send queue full, frame dropped",
				zap.String("conn", c.ID), zap.String("identity", c.Identity), zap.String("event", ev.EventName()))
		}
	}
	metrics.FanoutDeliveries.WithLabelValues(target).Add(float64(n))
	return n
}
