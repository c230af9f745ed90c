package service

import (
	"context"
	"fmt"
	"testing"

	contactmodel "PolyChat/module/contact/model"
	roommodel "PolyChat/module/room/model"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
	"PolyChat/service/chat/chattest"
	"PolyChat/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	rooms    roommodel.Rooms
	requests roommodel.JoinRequests
	contacts contactmodel.Store
	users    usermodel.Users
	rec      *chattest.Recorder
}

func newFixture(t *testing.T, users ...string) *fixture {
	f := &fixture{
		rooms:    roommodel.NewMemRooms(),
		requests: roommodel.NewMemJoinRequests(),
		contacts: contactmodel.NewMemStore(),
		users:    usermodel.NewMemUsers(),
		rec:      &chattest.Recorder{},
	}
	f.svc = NewService(f.rooms, f.requests, f.contacts, f.users, f.rec)
	n := 0
	f.svc.newID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	for _, u := range users {
		require.NoError(t, f.users.Create(context.Background(), &usermodel.User{Username: u, Status: "offline"}))
	}
	return f
}

func TestCreateJoinsOwner(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	id, err := f.svc.Create(ctx, "alice", " Team One ")
	require.NoError(t, err)
	r, err := f.rooms.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Team One", r.Name)
	assert.Equal(t, []string{"alice"}, r.Users)
	assert.False(t, r.IsEveryoneCanInvite)
	assert.True(t, f.rec.Has(chattest.Join, id, "alice"))

	rooms, _ := f.contacts.RoomsOf(ctx, "alice")
	assert.Equal(t, []string{id}, rooms)

	_, err = f.svc.Create(ctx, "alice", "bad<name>")
	assert.True(t, errs.ErrForbiddenCharacters.Is(err))
}

func TestGetMembersOnly(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	id, err := f.svc.Create(ctx, "alice", "team")
	require.NoError(t, err)

	v, err := f.svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	require.Len(t, v.Users, 1)
	assert.Equal(t, "alice", v.Users[0].Username)

	_, err = f.svc.Get(ctx, "bob", id)
	assert.True(t, errs.ErrRoomMembershipRequired.Is(err))
	_, err = f.svc.Get(ctx, "bob", "missing")
	assert.True(t, errs.ErrRoomNotFound.Is(err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	id, err := f.svc.Create(ctx, "alice", "team")
	require.NoError(t, err)

	require.NoError(t, f.svc.Update(ctx, "alice", id, " isEveryoneCanInvite ", true))
	require.NoError(t, f.svc.Update(ctx, "alice", id, "name", "renamed"))
	r, _ := f.rooms.Get(ctx, id)
	assert.True(t, r.IsEveryoneCanInvite)
	assert.Equal(t, "renamed", r.Name)

	assert.True(t, errs.ErrInvalidProperty.Is(f.svc.Update(ctx, "alice", id, "owner", "bob")))
	assert.True(t, errs.ErrForbiddenCharacters.Is(f.svc.Update(ctx, "alice", id, "name", "x!")))
	assert.True(t, errs.ErrRoomOwnershipRequired.Is(f.svc.Update(ctx, "bob", id, "name", "mine")))
}

func TestJoinRequestFlow(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	id, err := f.svc.Create(ctx, "alice", "team")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestJoin(ctx, "bob", id))
	evs := f.rec.Events(chattest.ToUser, "alice")
	require.Len(t, evs, 1)
	jr := evs[0].(chat.JoinRequestReceived)
	assert.Equal(t, "bob", jr.Requester)
	assert.Equal(t, "team", jr.RoomName)

	assert.True(t, errs.ErrAlreadyJoined.Is(f.svc.RequestJoin(ctx, "alice", id)))
	assert.True(t, errs.ErrRoomOwnershipRequired.Is(f.svc.AnswerJoin(ctx, "bob", jr.ID, "accept")))
	assert.True(t, errs.ErrInvalidAction.Is(f.svc.AnswerJoin(ctx, "alice", jr.ID, "maybe")))

	f.rec.Reset()
	require.NoError(t, f.svc.AnswerJoin(ctx, "alice", jr.ID, " Accept "))
	r, _ := f.rooms.Get(ctx, id)
	assert.ElementsMatch(t, []string{"alice", "bob"}, r.Users)
	assert.True(t, f.rec.Has(chattest.Join, id, "bob"))
	group := f.rec.Events(chattest.ToGroup, id)
	require.Len(t, group, 1)
	assert.Equal(t, "bob", group[0].(chat.RoomMemberJoined).Username)
	assert.Equal(t, []chat.Event{chat.RoomJoined{ID: id, Name: "team"}}, f.rec.Events(chattest.ToUser, "bob"))

	_, err = f.requests.Get(ctx, jr.ID)
	assert.True(t, errs.ErrJoinRequestNotFound.Is(err))
}

func TestLeaveDeletesNearlyEmptyRoom(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	id, err := f.svc.Create(ctx, "alice", "team")
	require.NoError(t, err)
	for _, u := range []string{"bob", "carol"} {
		require.NoError(t, f.rooms.AddMember(ctx, id, u))
		require.NoError(t, f.contacts.AddRoom(ctx, u, id))
	}

	f.rec.Reset()
	require.NoError(t, f.svc.Leave(ctx, "carol", id))
	assert.True(t, f.rec.Has(chattest.Leave, id, "carol"))
	assert.Equal(t, []chat.Event{chat.RoomLeft{ID: id}}, f.rec.Events(chattest.ToUser, "carol"))
	assert.Equal(t, []chat.Event{chat.RoomMemberLeft{RoomID: id, Username: "carol"}}, f.rec.Events(chattest.ToGroup, id))
	assert.False(t, f.rec.Has(chattest.Drop, id, ""))

	f.rec.Reset()
	require.NoError(t, f.svc.Leave(ctx, "bob", id))
	assert.True(t, f.rec.Has(chattest.Drop, id, ""))
	_, err = f.rooms.Get(ctx, id)
	assert.True(t, errs.ErrRoomNotFound.Is(err))
	rooms, _ := f.contacts.RoomsOf(ctx, "alice")
	assert.Empty(t, rooms)

	assert.True(t, errs.ErrRoomNotFound.Is(f.svc.Leave(ctx, "alice", id)))
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	id, err := f.svc.Create(ctx, "alice", "team")
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, "bob", id)
	assert.True(t, errs.ErrRoomOwnershipRequired.Is(err))

	r, err := f.svc.Delete(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Equal(t, []chat.Event{chat.RoomLeft{ID: id}}, f.rec.Events(chattest.ToGroup, id))
	assert.True(t, f.rec.Has(chattest.Drop, id, ""))
}

func TestSearch(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "alice", "Go Gophers")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "alice", "Rustaceans")
	require.NoError(t, err)

	got, err := f.svc.Search(ctx, "goph")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Go Gophers", got[0].Name)

	_, err = f.svc.Search(ctx, "go")
	assert.True(t, errs.ErrQueryTooShort.Is(err))
}
