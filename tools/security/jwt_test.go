package security

import (
	"context"
	"testing"
	"time"

	"PolyChat/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerify(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	tok, exp, err := Generate(opts, "alice")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	user, gotExp, err := NewJWTVerifier(opts).Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, exp.Unix(), gotExp.Unix())
}

func TestVerifyRejects(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	tok, _, err := Generate(opts, "alice")
	require.NoError(t, err)

	cases := map[string]struct {
		opts  Options
		token string
	}{
		"wrong secret": {DefaultOptions([]byte("other")), tok},
		"malformed":    {opts, "not-a-token"},
		"wrong alg":    {Options{Secret: []byte("secret"), Alg: "HS256"}, tok},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Verify(tc.opts, tc.token)
			require.Error(t, err)
			assert.Equal(t, errs.KindAuth, errs.KindOf(err))
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	opts.TTL = time.Nanosecond
	tok, _, err := Generate(opts, "alice")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = Verify(opts, tok)
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "hunter22"))
	assert.False(t, CheckPassword(h, "hunter23"))
}
