package service

import (
	"context"
	"strings"

	contactmodel "PolyChat/module/contact/model"
	invmodel "PolyChat/module/invitation/model"
	roommodel "PolyChat/module/room/model"
	roomservice "PolyChat/module/room/service"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
	"PolyChat/tools/errs"

	"github.com/google/uuid"
)

type Service struct {
	invitations invmodel.Store
	users       usermodel.Users
	contacts    contactmodel.Store
	rooms       roommodel.Rooms
	members     *roomservice.Service
	notifier    chat.Notifier
	newID       func() string
}

func NewService(invitations invmodel.Store, users usermodel.Users, contacts contactmodel.Store,
	rooms roommodel.Rooms, members *roomservice.Service, notifier chat.Notifier) *Service {
	return &Service{
		invitations: invitations,
		users:       users,
		contacts:    contacts,
		rooms:       rooms,
		members:     members,
		notifier:    notifier,
		newID:       uuid.NewString,
	}
}

// Invite offers invitee a contact link, or membership of roomID when set.
func (s *Service) Invite(ctx context.Context, me, invitee, roomID string) (string, error) {
	target, err := s.users.Get(ctx, invitee)
	if errs.ErrRecordNotFound.Is(err) {
		return "", errs.ErrInviteeNotFound.Wrap()
	}
	if err != nil {
		return "", err
	}

	inv := &invmodel.Invitation{ID: s.newID(), Inviter: me, Invitee: target.Username}
	var roomName *string
	if roomID != "" {
		r, err := s.rooms.Get(ctx, roomID)
		if err != nil {
			return "", err
		}
		if r.HasMember(invitee) {
			return "", errs.ErrInviteeAlreadyAdded.Wrap()
		}
		if r.Owner != me && !(r.IsEveryoneCanInvite && r.HasMember(me)) {
			return "", errs.ErrInvitingPermission.Wrap()
		}
		inv.IsRoomInvitation = true
		inv.RoomID = &r.ID
		roomName = &r.Name
	} else {
		c, err := s.contacts.Get(ctx, me)
		if err != nil {
			return "", err
		}
		if c.HasUser(invitee) {
			return "", errs.ErrInviteeAlreadyAdded.Wrap()
		}
	}

	if err := s.invitations.Create(ctx, inv); err != nil {
		return "", err
	}
	s.notifier.NotifyUser(inv.Invitee, chat.InvitationReceived{Invitation: inv.Event(), RoomName: roomName})
	return inv.ID, nil
}

// Respond accepts or rejects an invitation addressed to me.
func (s *Service) Respond(ctx context.Context, me, invitationID, action string) error {
	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Invitee != me {
		return errs.ErrInvitedPrivilege.Wrap()
	}

	switch strings.ToLower(strings.TrimSpace(action)) {
	case roomservice.ActionReject:
		if err := s.invitations.Delete(ctx, inv.ID); err != nil {
			return err
		}
		if inv.IsRoomInvitation {
			s.notifier.NotifyUser(inv.Inviter, chat.InvitationRejected{Invitation: inv.Event()})
		}
		return nil
	case roomservice.ActionAccept:
		if err := s.invitations.Delete(ctx, inv.ID); err != nil {
			return err
		}
		if inv.IsRoomInvitation {
			return s.acceptRoom(ctx, inv)
		}
		return s.acceptContact(ctx, inv)
	default:
		return errs.ErrInvalidAction.Wrap()
	}
}

func (s *Service) acceptRoom(ctx context.Context, inv *invmodel.Invitation) error {
	if inv.RoomID == nil {
		return errs.ErrRoomNotFound.Wrap()
	}
	r, err := s.rooms.Get(ctx, *inv.RoomID)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, inv.Invitee)
	if err != nil {
		return err
	}
	return s.members.AddMember(ctx, r, u)
}

func (s *Service) acceptContact(ctx context.Context, inv *invmodel.Invitation) error {
	if err := s.contacts.AddUser(ctx, inv.Invitee, inv.Inviter); err != nil {
		return err
	}
	if err := s.contacts.AddUser(ctx, inv.Inviter, inv.Invitee); err != nil {
		return err
	}
	s.notifier.NotifyUser(inv.Inviter, chat.InvitationAccepted{Invitation: inv.Event()})

	inviter, err := s.users.Get(ctx, inv.Inviter)
	if err != nil {
		return err
	}
	invitee, err := s.users.Get(ctx, inv.Invitee)
	if err != nil {
		return err
	}
	s.notifier.NotifyUser(inv.Inviter, chat.ContactAdded{UserProfile: invitee.Profile()})
	s.notifier.NotifyUser(inv.Invitee, chat.ContactAdded{UserProfile: inviter.Profile()})
	return nil
}
