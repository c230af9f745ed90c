package chat

import (
	"context"
	"encoding/json"
)

// websocket close codes used by the server
const (
	CloseNormal         = 1000
	CloseGoingAway      = 1001
	CloseInvalidSession = 4001
)

// Handler processes one inbound command frame type.
type Handler interface {
	Type() string
	Handle(ctx *ChatContext, data json.RawMessage) error
}

// ChatContext is what a handler sees of the connection it serves.
type ChatContext struct {
	Ctx    context.Context
	S      *Server
	Client *Client
}

// Inbound is a command frame sent by the browser.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// IdentityResolver turns a session token into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RoomLookup lists the rooms an identity belongs to at connect time.
type RoomLookup interface {
	RoomsOf(ctx context.Context, identity string) ([]string, error)
}

// Notifier is what business modules use to push events and keep room groups
// in sync with membership. Hub implements it.
type Notifier interface {
	NotifyUser(identity string, ev Event) int
	NotifyGroup(group string, ev Event) int
	NotifyAll(ev Event) int
	JoinRoom(identity, room string)
	LeaveRoom(identity, room string)
	DropRoom(room string)
}

var _ Notifier = (*Hub)(nil)
