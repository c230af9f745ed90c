package bus

import "context"

const (
	KindDirect = "direct"
	KindRoom   = "room"
)

// Event is a persisted chat message announced to external consumers.
type Event struct {
	Kind    string // direct | room
	Key     string // conversation key, keeps one conversation on one partition
	ID      string // message id, used for dedup
	Payload []byte // JSON message record
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
