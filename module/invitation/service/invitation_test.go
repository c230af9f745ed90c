package service

import (
	"context"
	"testing"

	contactmodel "PolyChat/module/contact/model"
	invmodel "PolyChat/module/invitation/model"
	roommodel "PolyChat/module/room/model"
	roomservice "PolyChat/module/room/service"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
	"PolyChat/service/chat/chattest"
	"PolyChat/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	invs     invmodel.Store
	users    usermodel.Users
	contacts contactmodel.Store
	rooms    roommodel.Rooms
	rec      *chattest.Recorder
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		invs:     invmodel.NewMemStore(),
		users:    usermodel.NewMemUsers(),
		contacts: contactmodel.NewMemStore(),
		rooms:    roommodel.NewMemRooms(),
		rec:      &chattest.Recorder{},
	}
	members := roomservice.NewService(f.rooms, roommodel.NewMemJoinRequests(), f.contacts, f.users, f.rec)
	f.svc = NewService(f.invs, f.users, f.contacts, f.rooms, members, f.rec)
	ctx := context.Background()
	for _, u := range []string{"alice", "bob", "carol"} {
		require.NoError(t, f.users.Create(ctx, &usermodel.User{Username: u, Status: "offline"}))
	}
	require.NoError(t, f.rooms.Create(ctx, &roommodel.Room{ID: "r1", Owner: "alice", Name: "team", Users: []string{"alice", "carol"}}))
	return f
}

func TestContactInvitationAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Invite(ctx, "alice", "bob", "")
	require.NoError(t, err)
	evs := f.rec.Events(chattest.ToUser, "bob")
	require.Len(t, evs, 1)
	got := evs[0].(chat.InvitationReceived)
	assert.Equal(t, id, got.ID)
	assert.False(t, got.IsRoomInvitation)
	assert.Nil(t, got.RoomName)

	assert.True(t, errs.ErrInvitedPrivilege.Is(f.svc.Respond(ctx, "carol", id, "accept")))
	assert.True(t, errs.ErrInvalidAction.Is(f.svc.Respond(ctx, "bob", id, "later")))

	f.rec.Reset()
	require.NoError(t, f.svc.Respond(ctx, "bob", id, "ACCEPT"))
	a, _ := f.contacts.Get(ctx, "alice")
	b, _ := f.contacts.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, a.Users)
	assert.Equal(t, []string{"alice"}, b.Users)

	toAlice := f.rec.Events(chattest.ToUser, "alice")
	require.Len(t, toAlice, 2)
	assert.IsType(t, chat.InvitationAccepted{}, toAlice[0])
	assert.Equal(t, "bob", toAlice[1].(chat.ContactAdded).Username)
	toBob := f.rec.Events(chattest.ToUser, "bob")
	require.Len(t, toBob, 1)
	assert.Equal(t, "alice", toBob[0].(chat.ContactAdded).Username)

	_, err = f.invs.Get(ctx, id)
	assert.True(t, errs.ErrInvitationNotFound.Is(err))

	_, err = f.svc.Invite(ctx, "alice", "bob", "")
	assert.True(t, errs.ErrInviteeAlreadyAdded.Is(err))
}

func TestRoomInvitationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Invite(ctx, "alice", "nobody", "r1")
	assert.True(t, errs.ErrInviteeNotFound.Is(err))
	_, err = f.svc.Invite(ctx, "alice", "bob", "missing")
	assert.True(t, errs.ErrRoomNotFound.Is(err))
	_, err = f.svc.Invite(ctx, "alice", "carol", "r1")
	assert.True(t, errs.ErrInviteeAlreadyAdded.Is(err))
	_, err = f.svc.Invite(ctx, "carol", "bob", "r1")
	assert.True(t, errs.ErrInvitingPermission.Is(err))

	require.NoError(t, f.rooms.Set(ctx, "r1", roommodel.PropIsEveryoneCanInvite, true))
	id, err := f.svc.Invite(ctx, "carol", "bob", "r1")
	require.NoError(t, err)
	got := f.rec.Events(chattest.ToUser, "bob")[0].(chat.InvitationReceived)
	require.NotNil(t, got.RoomName)
	assert.Equal(t, "team", *got.RoomName)

	f.rec.Reset()
	require.NoError(t, f.svc.Respond(ctx, "bob", id, "accept"))
	r, _ := f.rooms.Get(ctx, "r1")
	assert.Contains(t, r.Users, "bob")
	assert.True(t, f.rec.Has(chattest.Join, "r1", "bob"))
	assert.Len(t, f.rec.Events(chattest.ToGroup, "r1"), 1)
	assert.Equal(t, []chat.Event{chat.RoomJoined{ID: "r1", Name: "team"}}, f.rec.Events(chattest.ToUser, "bob"))
}

func TestRoomInvitationReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.Invite(ctx, "alice", "bob", "r1")
	require.NoError(t, err)

	f.rec.Reset()
	require.NoError(t, f.svc.Respond(ctx, "bob", id, "reject"))
	evs := f.rec.Events(chattest.ToUser, "alice")
	require.Len(t, evs, 1)
	assert.Equal(t, id, evs[0].(chat.InvitationRejected).ID)
	r, _ := f.rooms.Get(ctx, "r1")
	assert.NotContains(t, r.Users, "bob")
}
