package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeErrorKinds(t *testing.T) {
	cases := []struct {
		err  CodeError
		kind Kind
	}{
		{ErrInvalidSession, KindAuth},
		{ErrMessageTooShort, KindValidation},
		{ErrTranslator, KindTranslation},
		{ErrRoomNotFound, KindNotFound},
		{ErrRoomOwnershipRequired, KindForbidden},
		{ErrUserAlreadyExists, KindConflict},
		{ErrInternal, KindInternal},
	}
	for _, c := range cases {
		t.Run(c.err.Msg, func(t *testing.T) {
			assert.Equal(t, c.kind, KindOf(c.err.Wrap()))
		})
	}
}

func TestWrapKeepsReason(t *testing.T) {
	err := ErrInvalidDestination.WrapMsg("both set", "recipient", "bob", "room", "r1")
	wrapped := fmt.Errorf("send: %w", err)

	ce, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "INVALID_DESTINATION", ce.Msg)
	assert.Equal(t, "both set, recipient=bob, room=r1", ce.Detail)
	assert.Equal(t, "INVALID_DESTINATION", Reason(wrapped))
	assert.True(t, ErrInvalidDestination.Is(wrapped))
	assert.False(t, ErrMessageTooShort.Is(wrapped))
}

func TestReasonOfPlainError(t *testing.T) {
	assert.Equal(t, "INTERNAL_ERROR", Reason(New("boom")))
	assert.Equal(t, KindInternal, KindOf(WrapMsg(New("boom"), "ctx")))
	assert.Nil(t, Wrap(nil))
}

func TestErrPanic(t *testing.T) {
	assert.Nil(t, ErrPanic(nil))
	ce, ok := As(ErrPanic("bad"))
	require.True(t, ok)
	assert.Equal(t, ServerInternalError, ce.Code)
	assert.Equal(t, "bad", ce.Detail)
}
