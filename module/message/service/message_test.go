package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"PolyChat/module/message/model"
	"PolyChat/service/bus"
	"PolyChat/service/chat"
	"PolyChat/service/chat/chattest"
	"PolyChat/tools/errs"
	"PolyChat/tools/ids"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s>%s:%s", source, target, text))
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "]" + text, nil
}

type fakeFiles map[string]int64

func (f fakeFiles) Describe(name string) (*chat.Attachment, error) {
	size, ok := f[name]
	if !ok {
		return nil, errs.ErrAttachmentNotFound.Wrap()
	}
	return &chat.Attachment{Type: "image", Extension: ".png", Size: size, FileName: name}, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []bus.Event
	err    error
}

func (b *fakeBus) Publish(_ context.Context, ev bus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return b.err
}

func (b *fakeBus) Close() error { return nil }

type fixture struct {
	svc   *Service
	store model.Store
	tr    *fakeTranslator
	rec   *chattest.Recorder
	bus   *fakeBus
}

func newFixture(pageSize int) *fixture {
	f := &fixture{
		store: model.NewMemStore(),
		tr:    &fakeTranslator{},
		rec:   &chattest.Recorder{},
		bus:   &fakeBus{},
	}
	f.svc = NewService(f.store, f.tr, f.rec, fakeFiles{"cat.png": 2048}, f.bus, ids.NewGenerator(3), pageSize)
	return f
}

func (f *fixture) stored(t *testing.T, q model.Query) []*model.Message {
	t.Helper()
	msgs, err := f.store.List(context.Background(), q)
	require.NoError(t, err)
	return msgs
}

func TestSendValidationHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name string
		req  SendRequest
		want *errs.CodeError
	}{
		{"blank content", SendRequest{Sender: "a", Content: "   ", Recipient: "b"}, &errs.ErrMessageTooShort},
		{"no destination", SendRequest{Sender: "a", Content: "hi"}, &errs.ErrInvalidDestination},
		{"both destinations", SendRequest{Sender: "a", Content: "hi", Recipient: "b", RoomID: "r"}, &errs.ErrInvalidDestination},
		{"bad target", SendRequest{Sender: "a", Content: "hi", Recipient: "b", TargetLang: "xx"}, &errs.ErrInvalidTargetLang},
		{"bad source", SendRequest{Sender: "a", Content: "hi", Recipient: "b", SourceLang: "xx", TargetLang: "fr"}, &errs.ErrInvalidSourceLang},
		{"unknown file", SendRequest{Sender: "a", FileName: "nope.png", Recipient: "b"}, &errs.ErrAttachmentNotFound},
		{"no sender", SendRequest{Content: "hi", Recipient: "b"}, &errs.ErrSessionRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			_, err := f.svc.Send(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, tt.want.Is(err), "got %v", err)
			assert.Empty(t, f.stored(t, model.Query{Me: "a", Peer: "b"}))
			assert.Empty(t, f.rec.Calls())
			assert.Empty(t, f.bus.events)
			assert.Empty(t, f.tr.calls)
		})
	}
}

func TestSendCommandTranslates(t *testing.T) {
	f := newFixture(0)
	msg, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "  /fr Bonjour ", Recipient: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"auto>fr:Bonjour"}, f.tr.calls)
	assert.Equal(t, "[fr]Bonjour", msg.Content)

	// unsupported code is plain text
	msg, err = f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "/zz hello", Recipient: "b"})
	require.NoError(t, err)
	assert.Equal(t, "/zz hello", msg.Content)
	assert.Len(t, f.tr.calls, 1)
}

func TestSendExplicitTarget(t *testing.T) {
	f := newFixture(0)
	_, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "Hallo", Recipient: "b", TargetLang: "en"})
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "Hallo", Recipient: "b", SourceLang: "de", TargetLang: "pl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"auto>en:Hallo", "de>pl:Hallo"}, f.tr.calls)
}

func TestSendTranslatorFailurePersistsNothing(t *testing.T) {
	f := newFixture(0)
	f.tr.err = errors.New("upstream 503")
	_, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "/de hi", Recipient: "b"})
	require.Error(t, err)
	assert.True(t, errs.ErrTranslator.Is(err))
	assert.Equal(t, errs.KindTranslation, errs.KindOf(err))
	assert.Empty(t, f.stored(t, model.Query{Me: "a", Peer: "b"}))
	assert.Empty(t, f.rec.Calls())
}

func TestSendAttachmentSkipsTranslation(t *testing.T) {
	f := newFixture(0)
	msg, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "/fr look", FileName: "cat.png", Recipient: "b"})
	require.NoError(t, err)
	assert.Empty(t, f.tr.calls)
	assert.Equal(t, "/fr look", msg.Content)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, int64(2048), msg.Attachment.Size)
}

func TestDirectFanout(t *testing.T) {
	f := newFixture(0)
	msg, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "hi", Recipient: "b"})
	require.NoError(t, err)

	toB := f.rec.Events(chattest.ToUser, "b")
	toA := f.rec.Events(chattest.ToUser, "a")
	require.Len(t, toB, 1)
	require.Len(t, toA, 1)
	ev := toB[0].(chat.MessageReceived)
	assert.Equal(t, msg.ID, ev.ID)
	assert.Equal(t, "b", *ev.Recipient)
	assert.Nil(t, ev.RoomID)

	require.Len(t, f.bus.events, 1)
	assert.Equal(t, bus.KindDirect, f.bus.events[0].Kind)
	assert.Equal(t, "a|b", f.bus.events[0].Key)
	assert.Equal(t, msg.ID, f.bus.events[0].ID)
}

func TestSelfMessageDeliveredOnce(t *testing.T) {
	f := newFixture(0)
	_, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "note to self", Recipient: "a"})
	require.NoError(t, err)
	assert.Len(t, f.rec.Calls(), 1)
	assert.Len(t, f.rec.Events(chattest.ToUser, "a"), 1)
}

func TestRoomFanoutOnce(t *testing.T) {
	f := newFixture(0)
	_, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "hello room", RoomID: "r1"})
	require.NoError(t, err)
	calls := f.rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, chattest.ToGroup, calls[0].Kind)
	assert.Equal(t, "r1", calls[0].Target)
	assert.Equal(t, "r1", f.bus.events[0].Key)
}

func TestBusFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(0)
	f.bus.err = errors.New("broker down")
	_, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "hi", Recipient: "b"})
	require.NoError(t, err)
	assert.Len(t, f.stored(t, model.Query{Me: "a", Peer: "b"}), 1)
}

func TestIDsIncreaseInInsertionOrder(t *testing.T) {
	f := newFixture(0)
	var prev int64
	for i := 0; i < 200; i++ {
		msg, err := f.svc.Send(context.Background(), SendRequest{Sender: "a", Content: "m", Recipient: "b"})
		require.NoError(t, err)
		assert.Greater(t, msg.Seq, prev)
		prev = msg.Seq
	}
}

func TestConversationPaging(t *testing.T) {
	f := newFixture(3)
	ctx := context.Background()
	var sent []*model.Message
	for i := 0; i < 7; i++ {
		from, to := "a", "b"
		if i%2 == 1 {
			from, to = "b", "a"
		}
		msg, err := f.svc.Send(ctx, SendRequest{Sender: from, Content: fmt.Sprint(i), Recipient: to})
		require.NoError(t, err)
		sent = append(sent, msg)
	}
	// unrelated conversation
	_, err := f.svc.Send(ctx, SendRequest{Sender: "a", Content: "x", Recipient: "c"})
	require.NoError(t, err)

	p, err := f.svc.Conversation(ctx, "a", "b", "")
	require.NoError(t, err)
	assert.False(t, p.Ended)
	require.Len(t, p.Messages, 3)
	assert.Equal(t, sent[6].ID, p.Messages[0].ID)
	assert.Equal(t, sent[4].ID, p.Messages[2].ID)

	p, err = f.svc.Conversation(ctx, "b", "a", p.Messages[2].ID)
	require.NoError(t, err)
	assert.False(t, p.Ended)
	assert.Equal(t, sent[3].ID, p.Messages[0].ID)

	p, err = f.svc.Conversation(ctx, "a", "b", sent[3].ID)
	require.NoError(t, err)
	assert.True(t, p.Ended)
	assert.Len(t, p.Messages, 3)

	_, err = f.svc.Conversation(ctx, "a", "b", "abc")
	assert.True(t, errs.ErrInvalidMessageID.Is(err))
}

func TestRoomHistoryAndAttachments(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	_, err := f.svc.Send(ctx, SendRequest{Sender: "a", Content: "one", RoomID: "r1"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, SendRequest{Sender: "b", FileName: "cat.png", RoomID: "r1"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, SendRequest{Sender: "b", Content: "elsewhere", RoomID: "r2"})
	require.NoError(t, err)

	p, err := f.svc.Room(ctx, "r1", "")
	require.NoError(t, err)
	assert.True(t, p.Ended)
	assert.Len(t, p.Messages, 2)

	ap, err := f.svc.RoomAttachments(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, ap.Attachments, 1)
	assert.Equal(t, "cat.png", ap.Attachments[0].FileName)

	empty, err := f.svc.ConversationAttachments(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, empty.Ended)
	assert.NotNil(t, empty.Attachments)

	last, err := f.svc.LastFor(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "one", last.Content)

	none, err := f.svc.LastFor(ctx, "z")
	require.NoError(t, err)
	assert.Nil(t, none)

	last, err = f.svc.LastFor(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "elsewhere", last.Content)
}
