package service

import (
	"context"

	contactmodel "PolyChat/module/contact/model"
	roommodel "PolyChat/module/room/model"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
)

// List is the caller's contact book with full user and room records.
type List struct {
	Users []chat.UserProfile `json:"users"`
	Rooms []*roommodel.Room  `json:"rooms"`
}

type Service struct {
	contacts contactmodel.Store
	users    usermodel.Users
	rooms    roommodel.Rooms
	notifier chat.Notifier
}

func NewService(contacts contactmodel.Store, users usermodel.Users, rooms roommodel.Rooms, notifier chat.Notifier) *Service {
	return &Service{contacts: contacts, users: users, rooms: rooms, notifier: notifier}
}

func (s *Service) List(ctx context.Context, me string) (*List, error) {
	c, err := s.contacts.Get(ctx, me)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Find(ctx, c.Users)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.Find(ctx, c.Rooms)
	if err != nil {
		return nil, err
	}
	out := &List{Users: make([]chat.UserProfile, 0, len(users)), Rooms: rooms}
	for _, u := range users {
		out.Users = append(out.Users, u.Profile())
	}
	if out.Rooms == nil {
		out.Rooms = []*roommodel.Room{}
	}
	return out, nil
}

// Delete removes the contact on both sides and tells both of them.
func (s *Service) Delete(ctx context.Context, me, other string) error {
	if err := s.contacts.RemoveUser(ctx, me, other); err != nil {
		return err
	}
	if err := s.contacts.RemoveUser(ctx, other, me); err != nil {
		return err
	}
	s.notifier.NotifyUser(me, chat.ContactDeleted{Username: other})
	s.notifier.NotifyUser(other, chat.ContactDeleted{Username: me})
	return nil
}
