package model

import (
	"context"
	"sync"

	"PolyChat/tools/errs"
)

type memStore struct {
	mu   sync.RWMutex
	msgs []*Message // Seq ascending
}

// NewMemStore returns a process local message Store.
func NewMemStore() Store {
	return &memStore{}
}

func (m *memStore) Insert(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.msgs); n > 0 && m.msgs[n-1].Seq >= msg.Seq {
		return errs.New("seq not increasing", "seq", msg.Seq)
	}
	cp := *msg
	m.msgs = append(m.msgs, &cp)
	return nil
}

func (q Query) match(msg *Message) bool {
	if q.Before > 0 && msg.Seq >= q.Before {
		return false
	}
	if q.AttachmentsOnly && msg.Attachment == nil {
		return false
	}
	if q.RoomID != "" {
		return msg.RoomID != nil && *msg.RoomID == q.RoomID
	}
	if msg.Recipient == nil {
		return false
	}
	return (msg.Sender == q.Me && *msg.Recipient == q.Peer) ||
		(msg.Sender == q.Peer && *msg.Recipient == q.Me)
}

func (m *memStore) List(_ context.Context, q Query) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Message
	for i := len(m.msgs) - 1; i >= 0 && (q.Limit <= 0 || len(out) < q.Limit); i-- {
		if q.match(m.msgs[i]) {
			cp := *m.msgs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) LastFor(_ context.Context, username string) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		msg := m.msgs[i]
		if msg.Sender == username || (msg.Recipient != nil && *msg.Recipient == username) {
			cp := *msg
			return &cp, nil
		}
	}
	return nil, nil
}
