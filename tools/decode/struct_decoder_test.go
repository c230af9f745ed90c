package decode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type langCmd struct {
	Lang  string   `json:"lang"`
	Tries int      `json:"tries"`
	Tags  []string `json:"tags"`
}

func TestDecodeRaw(t *testing.T) {
	out, err := DecodeRaw[langCmd](json.RawMessage(`{"lang":"fr","tries":2.0,"tags":["a",1]}`))
	require.NoError(t, err)
	assert.Equal(t, "fr", out.Lang)
	assert.Equal(t, 2, out.Tries)
	assert.Equal(t, []string{"a", "1"}, out.Tags)
}

func TestDecodeRawRejectsNonObject(t *testing.T) {
	_, err := DecodeRaw[langCmd](json.RawMessage(`"fr"`))
	require.Error(t, err)

	_, err = DecodeRaw[langCmd](nil)
	require.Error(t, err)
}

func TestReadHelpers(t *testing.T) {
	m := map[string]any{"s": "x", "n": "42", "f": 3.0}

	s, err := ReadString(m, "s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	n, err := ReadInt64(m, "n")
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	f, err := ReadInt64(m, "f")
	require.NoError(t, err)
	assert.EqualValues(t, 3, f)

	_, err = ReadString(m, "missing")
	assert.Error(t, err)
}
