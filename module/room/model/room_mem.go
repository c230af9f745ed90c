package model

import (
	"context"
	"sort"
	"strings"
	"sync"

	"PolyChat/tools/errs"
)

type memRooms struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewMemRooms returns a process local Rooms store.
func NewMemRooms() Rooms {
	return &memRooms{rooms: make(map[string]*Room)}
}

func clone(r *Room) *Room {
	cp := *r
	cp.Users = append([]string{}, r.Users...)
	return &cp
}

func (m *memRooms) Get(_ context.Context, id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, errs.ErrRoomNotFound.Wrap()
	}
	return clone(r), nil
}

func (m *memRooms) Find(_ context.Context, ids []string) ([]*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Room
	for _, id := range ids {
		if r, ok := m.rooms[id]; ok {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (m *memRooms) Create(_ context.Context, r *Room) error {
	m.mu.Lock()
	m.rooms[r.ID] = clone(r)
	m.mu.Unlock()
	return nil
}

func (m *memRooms) Set(_ context.Context, id, property string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return errs.ErrRoomNotFound.Wrap()
	}
	switch property {
	case PropName:
		v, _ := value.(string)
		r.Name = v
	case PropIsEveryoneCanInvite:
		v, _ := value.(bool)
		r.IsEveryoneCanInvite = v
	default:
		return errs.ErrInvalidProperty.Wrap()
	}
	return nil
}

func (m *memRooms) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
	return nil
}

func (m *memRooms) AddMember(_ context.Context, id, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return errs.ErrRoomNotFound.Wrap()
	}
	if !r.HasMember(username) {
		r.Users = append(r.Users, username)
	}
	return nil
}

func (m *memRooms) RemoveMember(_ context.Context, id, username string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, errs.ErrRoomNotFound.Wrap()
	}
	users := r.Users[:0]
	for _, u := range r.Users {
		if u != username {
			users = append(users, u)
		}
	}
	r.Users = users
	return clone(r), nil
}

func (m *memRooms) Search(_ context.Context, query string, limit int) ([]*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*Room
	for _, r := range m.rooms {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memJoinRequests struct {
	mu   sync.Mutex
	reqs map[string]JoinRequest
}

func NewMemJoinRequests() JoinRequests {
	return &memJoinRequests{reqs: make(map[string]JoinRequest)}
}

func (m *memJoinRequests) Create(_ context.Context, j *JoinRequest) error {
	m.mu.Lock()
	m.reqs[j.ID] = *j
	m.mu.Unlock()
	return nil
}

func (m *memJoinRequests) Get(_ context.Context, id string) (*JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.reqs[id]
	if !ok {
		return nil, errs.ErrJoinRequestNotFound.Wrap()
	}
	return &j, nil
}

func (m *memJoinRequests) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.reqs, id)
	m.mu.Unlock()
	return nil
}
