package model

import (
	"context"
	"sync"
)

type memStore struct {
	mu   sync.RWMutex
	docs map[string]*Contacts
}

// NewMemStore returns a process local contacts Store.
func NewMemStore() Store {
	return &memStore{docs: make(map[string]*Contacts)}
}

func (m *memStore) doc(username string) *Contacts {
	c, ok := m.docs[username]
	if !ok {
		c = &Contacts{Username: username, Users: []string{}, Rooms: []string{}}
		m.docs[username] = c
	}
	return c
}

func (m *memStore) Get(_ context.Context, username string) (*Contacts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.docs[username]
	if !ok {
		return &Contacts{Username: username, Users: []string{}, Rooms: []string{}}, nil
	}
	return &Contacts{
		Username: c.Username,
		Users:    append([]string{}, c.Users...),
		Rooms:    append([]string{}, c.Rooms...),
	}, nil
}

func (m *memStore) Create(_ context.Context, username string) error {
	m.mu.Lock()
	m.doc(username)
	m.mu.Unlock()
	return nil
}

func (m *memStore) AddUser(_ context.Context, username, contact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.doc(username)
	c.Users = addToSet(c.Users, contact)
	return nil
}

func (m *memStore) RemoveUser(_ context.Context, username, contact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.docs[username]; ok {
		c.Users = pull(c.Users, contact)
	}
	return nil
}

func (m *memStore) AddRoom(_ context.Context, username, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.doc(username)
	c.Rooms = addToSet(c.Rooms, roomID)
	return nil
}

func (m *memStore) RemoveRoom(_ context.Context, username, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.docs[username]; ok {
		c.Rooms = pull(c.Rooms, roomID)
	}
	return nil
}

func (m *memStore) RemoveRoomEverywhere(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.docs {
		c.Rooms = pull(c.Rooms, roomID)
	}
	return nil
}

func (m *memStore) RoomsOf(ctx context.Context, username string) ([]string, error) {
	c, err := m.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.Rooms, nil
}

func addToSet(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func pull(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
