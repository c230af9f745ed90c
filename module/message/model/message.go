package model

import (
	"context"
	"time"

	"PolyChat/service/chat"
)

// Message is a persisted chat message. Seq is the snowflake ordering key and
// ID its decimal form. Exactly one of Recipient and RoomID is set.
type Message struct {
	ID         string           `bson:"id" json:"id"`
	Seq        int64            `bson:"seq" json:"-"`
	Sender     string           `bson:"sender" json:"sender"`
	Date       time.Time        `bson:"date" json:"date"`
	Content    string           `bson:"content" json:"content"`
	Recipient  *string          `bson:"recipient" json:"recipient"`
	RoomID     *string          `bson:"roomID" json:"roomID"`
	Attachment *chat.Attachment `bson:"attachment,omitempty" json:"attachment,omitempty"`
}

func (m *Message) GetTableName() string {
	return "messages"
}

func (m *Message) Event() chat.MessageReceived {
	return chat.MessageReceived{
		ID:         m.ID,
		Sender:     m.Sender,
		Date:       m.Date,
		Content:    m.Content,
		Recipient:  m.Recipient,
		RoomID:     m.RoomID,
		Attachment: m.Attachment,
	}
}

// Query selects a reverse chronological slice of one conversation or room.
// Before, when positive, keeps only messages with a smaller Seq.
type Query struct {
	Me              string
	Peer            string
	RoomID          string
	Before          int64
	Limit           int
	AttachmentsOnly bool
}

// Store appends and pages messages. List returns newest first.
type Store interface {
	Insert(ctx context.Context, m *Message) error
	List(ctx context.Context, q Query) ([]*Message, error)
	// LastFor returns the newest message sent or received by username, nil if none.
	LastFor(ctx context.Context, username string) (*Message, error)
}
