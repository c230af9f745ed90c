package chat

import (
	"encoding/json"
	"time"

	"PolyChat/tools/errs"
)

const (
	EvMessageReceived     = "messageReceived"
	EvUserStatusChanged   = "userStatusChanged"
	EvContactAdded        = "contactAdded"
	EvContactDeleted      = "contactDeleted"
	EvInvitationReceived  = "invitationReceived"
	EvInvitationAccepted  = "invitationAccepted"
	EvInvitationRejected  = "invitationRejected"
	EvRoomJoined          = "roomJoined"
	EvRoomLeft            = "roomLeft"
	EvRoomMemberJoined    = "roomMemberJoined"
	EvRoomMemberLeft      = "roomMemberLeft"
	EvJoinRequestReceived = "joinRequestReceived"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Event is one of the payload types below; each carries its own wire name.
type Event interface {
	EventName() string
	event()
}

// Frame is the JSON text frame written to the websocket.
type Frame struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Encode renders ev as a wire frame.
func Encode(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, errs.New("nil event")
	}
	b, err := json.Marshal(Frame{Event: ev.EventName(), Data: ev})
	if err != nil {
		return nil, errs.WrapMsg(err, "encode frame", "event", ev.EventName())
	}
	return b, nil
}

type Attachment struct {
	Type      string `json:"type" bson:"type"`
	Extension string `json:"extension" bson:"extension"`
	Size      int64  `json:"size" bson:"size"`
	FileName  string `json:"fileName" bson:"fileName"`
}

// MessageReceived carries a persisted chat message.
type MessageReceived struct {
	ID         string      `json:"id"`
	Sender     string      `json:"sender"`
	Date       time.Time   `json:"date"`
	Content    string      `json:"content"`
	Recipient  *string     `json:"recipient"`
	RoomID     *string     `json:"roomID"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

type UserStatusChanged struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

// UserProfile is the public view of a user record.
type UserProfile struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	Avatar   string `json:"avatar,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

type ContactAdded struct {
	UserProfile
}

type ContactDeleted struct {
	Username string `json:"username"`
}

type Invitation struct {
	ID               string  `json:"id"`
	Inviter          string  `json:"inviter"`
	Invitee          string  `json:"invitee"`
	IsRoomInvitation bool    `json:"isRoomInvitation"`
	RoomID           *string `json:"roomID"`
}

type InvitationReceived struct {
	Invitation
	RoomName *string `json:"roomName"`
}

type InvitationAccepted struct {
	Invitation
}

type InvitationRejected struct {
	Invitation
}

type RoomJoined struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomLeft struct {
	ID string `json:"id"`
}

type RoomMemberJoined struct {
	RoomID string `json:"roomID"`
	UserProfile
}

type RoomMemberLeft struct {
	RoomID   string `json:"roomID"`
	Username string `json:"username"`
}

type JoinRequestReceived struct {
	ID        string `json:"id"`
	Requester string `json:"requester"`
	RoomID    string `json:"roomID"`
	RoomName  string `json:"roomName"`
}

func (MessageReceived) EventName() string     { return EvMessageReceived }
func (UserStatusChanged) EventName() string   { return EvUserStatusChanged }
func (ContactAdded) EventName() string        { return EvContactAdded }
func (ContactDeleted) EventName() string      { return EvContactDeleted }
func (InvitationReceived) EventName() string  { return EvInvitationReceived }
func (InvitationAccepted) EventName() string  { return EvInvitationAccepted }
func (InvitationRejected) EventName() string  { return EvInvitationRejected }
func (RoomJoined) EventName() string          { return EvRoomJoined }
func (RoomLeft) EventName() string            { return EvRoomLeft }
func (RoomMemberJoined) EventName() string    { return EvRoomMemberJoined }
func (RoomMemberLeft) EventName() string      { return EvRoomMemberLeft }
func (JoinRequestReceived) EventName() string { return EvJoinRequestReceived }

func (MessageReceived) event()     {}
func (UserStatusChanged) event()   {}
func (ContactAdded) event()        {}
func (ContactDeleted) event()      {}
func (InvitationReceived) event()  {}
func (InvitationAccepted) event()  {}
func (InvitationRejected) event()  {}
func (RoomJoined) event()          {}
func (RoomLeft) event()            {}
func (RoomMemberJoined) event()    {}
func (RoomMemberLeft) event()      {}
func (JoinRequestReceived) event() {}
