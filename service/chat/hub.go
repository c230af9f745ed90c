package chat

import (
	"context"

	"PolyChat/logger"

	"go.uber.org/zap"
)

// Hub owns the live connection state of this process and is the notify
// entry point for business modules.
type Hub struct {
	Registry *Registry
	Groups   *Groups
	Router   *Router
	Presence *Presence
}

type HubOptions struct {
	Shards    int
	HookQueue int
	Hooks     []TransitionHook
}

func NewHub(opts HubOptions) *Hub {
	reg := NewRegistry(opts.Shards)
	groups := NewGroups()
	router := NewRouter(reg, groups)
	return &Hub{
		Registry: reg,
		Groups:   groups,
		Router:   router,
		Presence: NewPresence(reg, router, opts.HookQueue, opts.Hooks...),
	}
}

// Connect registers c, runs the presence check and then joins it to rooms.
// Registering first means a concurrent JoinRoom for the identity already sees c.
func (h *Hub) Connect(c *Client, rooms []string) {
	h.Presence.OnConnect(c)
	h.Groups.Join(c, rooms...)
	logger.Debug("client connected", zap.String("conn", c.ID), zap.String("identity", c.Identity), zap.Int("rooms", len(rooms)))
}

// Attach registers c and only then loads its rooms from lookup. A membership
// committed while the lookup runs is picked up either by the lookup itself or
// by the JoinRoom that follows the commit. A failed lookup leaves c connected
// without groups.
func (h *Hub) Attach(ctx context.Context, c *Client, lookup RoomLookup) error {
	h.Connect(c, nil)
	if lookup == nil {
		return nil
	}
	rooms, err := lookup.RoomsOf(ctx, c.Identity)
	if err != nil {
		return err
	}
	h.Groups.Join(c, rooms...)
	return nil
}

// Disconnect tears c down. Only the first call for a client has any effect.
func (h *Hub) Disconnect(c *Client) {
	c.disconnectOnce.Do(func() {
		c.shutdown(CloseNormal, "")
		h.Groups.Leave(c)
		h.Presence.OnDisconnect(c)
		logger.Debug("client disconnected", zap.String("conn", c.ID), zap.String("identity", c.Identity))
	})
}

// Reject closes a client that never got registered.
func (h *Hub) Reject(c *Client, code int, reason string) {
	c.shutdown(code, reason)
}

func (h *Hub) NotifyUser(identity string, ev Event) int { return h.Router.ToIdentity(identity, ev) }

func (h *Hub) NotifyGroup(group string, ev Event) int { return h.Router.ToGroup(group, ev) }

func (h *Hub) NotifyAll(ev Event) int { return h.Router.ToAll(ev) }

// JoinRoom joins every live connection of identity to room.
func (h *Hub) JoinRoom(identity, room string) {
	h.Groups.JoinClients(room, h.Registry.ConnectionsOf(identity))
}

// LeaveRoom parts every live connection of identity from room.
func (h *Hub) LeaveRoom(identity, room string) {
	h.Groups.PartIdentity(identity, room)
}

// DropRoom tears down the group of a deleted room.
func (h *Hub) DropRoom(room string) {
	h.Groups.Drop(room)
}

// Online reports whether identity has a live connection.
func (h *Hub) Online(identity string) bool { return h.Presence.Online(identity) }

// Run drives the presence hook worker until ctx is done, then closes every live client.
func (h *Hub) Run(ctx context.Context) error {
	err := h.Presence.Run(ctx)
	h.Shutdown()
	return err
}

// Shutdown disconnects every live client.
func (h *Hub) Shutdown() {
	clients := h.Registry.All()
	for _, c := range clients {
		c.shutdown(CloseGoingAway, "server shutdown")
		h.Disconnect(c)
	}
	if len(clients) > 0 {
		logger.Info("hub shut down", zap.Int("clients", len(clients)))
	}
}
