package service

import (
	"context"
	"strings"

	contactmodel "PolyChat/module/contact/model"
	roommodel "PolyChat/module/room/model"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
	"PolyChat/tools"
	"PolyChat/tools/errs"

	"github.com/google/uuid"
)

const (
	minQuery    = 3
	searchLimit = 50

	ActionAccept = "accept"
	ActionReject = "reject"
)

// View is a room with member profiles instead of names.
type View struct {
	ID                  string             `json:"id"`
	Owner               string             `json:"owner"`
	Name                string             `json:"name"`
	Users               []chat.UserProfile `json:"users"`
	IsEveryoneCanInvite bool               `json:"isEveryoneCanInvite"`
}

type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type Service struct {
	rooms    roommodel.Rooms
	requests roommodel.JoinRequests
	contacts contactmodel.Store
	users    usermodel.Users
	notifier chat.Notifier
	newID    func() string
}

func NewService(rooms roommodel.Rooms, requests roommodel.JoinRequests, contacts contactmodel.Store,
	users usermodel.Users, notifier chat.Notifier) *Service {
	return &Service{
		rooms:    rooms,
		requests: requests,
		contacts: contacts,
		users:    users,
		notifier: notifier,
		newID:    uuid.NewString,
	}
}

func (s *Service) owned(ctx context.Context, me, roomID string) (*roommodel.Room, error) {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.Owner != me {
		return nil, errs.ErrRoomOwnershipRequired.Wrap()
	}
	return r, nil
}

// Get is visible to members only.
func (s *Service) Get(ctx context.Context, me, roomID string) (*View, error) {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !r.HasMember(me) {
		return nil, errs.ErrRoomMembershipRequired.Wrap()
	}
	members, err := s.users.Find(ctx, r.Users)
	if err != nil {
		return nil, err
	}
	v := &View{
		ID:                  r.ID,
		Owner:               r.Owner,
		Name:                r.Name,
		Users:               make([]chat.UserProfile, 0, len(members)),
		IsEveryoneCanInvite: r.IsEveryoneCanInvite,
	}
	for _, u := range members {
		v.Users = append(v.Users, u.Profile())
	}
	return v, nil
}

// Create makes me the owner and only member; my live connections join the group.
func (s *Service) Create(ctx context.Context, me, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.ErrInvalidRequest.WrapMsg("room name is required")
	}
	if !tools.ValidName(name) {
		return "", errs.ErrForbiddenCharacters.Wrap()
	}
	r := &roommodel.Room{ID: s.newID(), Owner: me, Name: name, Users: []string{me}}
	if err := s.rooms.Create(ctx, r); err != nil {
		return "", err
	}
	if err := s.contacts.AddRoom(ctx, me, r.ID); err != nil {
		return "", err
	}
	s.notifier.JoinRoom(me, r.ID)
	return r.ID, nil
}

// Update sets name or isEveryoneCanInvite. Owner only.
func (s *Service) Update(ctx context.Context, me, roomID, property string, value any) error {
	property = strings.TrimSpace(property)
	switch property {
	case roommodel.PropName:
		name, ok := value.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return errs.ErrInvalidRequest.WrapMsg("name must be a non empty string")
		}
		name = strings.TrimSpace(name)
		if !tools.ValidName(name) {
			return errs.ErrForbiddenCharacters.Wrap()
		}
		value = name
	case roommodel.PropIsEveryoneCanInvite:
		if _, ok := value.(bool); !ok {
			return errs.ErrInvalidRequest.WrapMsg("isEveryoneCanInvite must be a boolean")
		}
	default:
		return errs.ErrInvalidProperty.Wrap()
	}
	if _, err := s.owned(ctx, me, roomID); err != nil {
		return err
	}
	return s.rooms.Set(ctx, roomID, property, value)
}

// Delete removes the room everywhere and tears its group down. Owner only.
func (s *Service) Delete(ctx context.Context, me, roomID string) (*roommodel.Room, error) {
	r, err := s.owned(ctx, me, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.drop(ctx, roomID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) drop(ctx context.Context, roomID string) error {
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return err
	}
	if err := s.contacts.RemoveRoomEverywhere(ctx, roomID); err != nil {
		return err
	}
	s.notifier.NotifyGroup(roomID, chat.RoomLeft{ID: roomID})
	s.notifier.DropRoom(roomID)
	return nil
}

// RequestJoin files a join request and tells the owner.
func (s *Service) RequestJoin(ctx context.Context, me, roomID string) error {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if r.HasMember(me) {
		return errs.ErrAlreadyJoined.Wrap()
	}
	j := &roommodel.JoinRequest{ID: s.newID(), Requester: me, RoomID: roomID}
	if err := s.requests.Create(ctx, j); err != nil {
		return err
	}
	s.notifier.NotifyUser(r.Owner, chat.JoinRequestReceived{
		ID:        j.ID,
		Requester: me,
		RoomID:    roomID,
		RoomName:  r.Name,
	})
	return nil
}

// AnswerJoin accepts or rejects a join request. Owner only.
func (s *Service) AnswerJoin(ctx context.Context, me, requestID, action string) error {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != ActionAccept && action != ActionReject {
		return errs.ErrInvalidAction.Wrap()
	}
	j, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	requester, err := s.users.Get(ctx, j.Requester)
	if errs.ErrRecordNotFound.Is(err) {
		return errs.ErrRequesterNotFound.Wrap()
	}
	if err != nil {
		return err
	}
	r, err := s.owned(ctx, me, j.RoomID)
	if err != nil {
		return err
	}
	if action == ActionReject {
		return s.requests.Delete(ctx, requestID)
	}
	if err := s.AddMember(ctx, r, requester); err != nil {
		return err
	}
	return s.requests.Delete(ctx, requestID)
}

// AddMember records u as a member of r and joins u's live connections.
func (s *Service) AddMember(ctx context.Context, r *roommodel.Room, u *usermodel.User) error {
	if err := s.rooms.AddMember(ctx, r.ID, u.Username); err != nil {
		return err
	}
	if err := s.contacts.AddRoom(ctx, u.Username, r.ID); err != nil {
		return err
	}
	s.notifier.NotifyGroup(r.ID, chat.RoomMemberJoined{RoomID: r.ID, UserProfile: u.Profile()})
	s.notifier.JoinRoom(u.Username, r.ID)
	s.notifier.NotifyUser(u.Username, chat.RoomJoined{ID: r.ID, Name: r.Name})
	return nil
}

// Leave removes me from the room. A room left with at most one member is deleted.
func (s *Service) Leave(ctx context.Context, me, roomID string) error {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if !r.HasMember(me) {
		return errs.ErrRoomMembershipRequired.Wrap()
	}
	after, err := s.rooms.RemoveMember(ctx, roomID, me)
	if err != nil {
		return err
	}
	if err := s.contacts.RemoveRoom(ctx, me, roomID); err != nil {
		return err
	}
	s.notifier.LeaveRoom(me, roomID)
	s.notifier.NotifyUser(me, chat.RoomLeft{ID: roomID})
	s.notifier.NotifyGroup(roomID, chat.RoomMemberLeft{RoomID: roomID, Username: me})
	if len(after.Users) <= 1 {
		return s.drop(ctx, roomID)
	}
	return nil
}

func (s *Service) Search(ctx context.Context, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQuery {
		return nil, errs.ErrQueryTooShort.Wrap()
	}
	if !tools.ValidName(query) {
		return nil, errs.ErrForbiddenCharacters.Wrap()
	}
	found, err := s.rooms.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(found))
	for _, r := range found {
		out = append(out, Summary{ID: r.ID, Name: r.Name, Owner: r.Owner})
	}
	return out, nil
}
