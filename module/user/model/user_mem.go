package model

import (
	"context"
	"sort"
	"strings"
	"sync"

	"PolyChat/tools/errs"
)

type memUsers struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemUsers returns a process local Users store.
func NewMemUsers() Users {
	return &memUsers{users: make(map[string]*User)}
}

func (m *memUsers) Get(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, errs.ErrRecordNotFound.WrapMsg("user", "username", username)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return errs.ErrUserAlreadyExists.Wrap()
	}
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *memUsers) Find(_ context.Context, usernames []string) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*User
	for _, name := range usernames {
		if u, ok := m.users[name]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) Search(_ context.Context, query string, limit int) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*User
	for name, u := range m.users {
		if strings.Contains(strings.ToLower(name), q) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) SetStatus(_ context.Context, username, status string) error {
	return m.update(username, func(u *User) { u.Status = status })
}

func (m *memUsers) SetAvatar(_ context.Context, username, avatar string) error {
	return m.update(username, func(u *User) { u.Avatar = &avatar })
}

func (m *memUsers) SetLang(_ context.Context, username, lang string) error {
	return m.update(username, func(u *User) { u.Lang = lang })
}

func (m *memUsers) update(username string, fn func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return errs.ErrRecordNotFound.WrapMsg("user", "username", username)
	}
	fn(u)
	return nil
}
