package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PolyChat/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in, lang, rest string
		ok             bool
	}{
		{"/fr Bonjour", "fr", "Bonjour", true},
		{"/de  zwei", "de", " zwei", true},
		{"/xx hello", "", "", false},
		{"/fr", "", "", false},
		{"/frBonjour", "", "", false},
		{"fr Bonjour", "", "", false},
		{"/fra hi", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			lang, rest, ok := ParseCommand(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.lang, lang)
			assert.Equal(t, tc.rest, rest)
		})
	}
}

func TestDeepLTranslate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "DeepL-Auth-Key k", r.Header.Get("Authorization"))
		assert.Equal(t, "Hello", r.PostForm.Get("text"))
		assert.Equal(t, "FR", r.PostForm.Get("target_lang"))
		assert.Empty(t, r.PostForm.Get("source_lang"))
		_, _ = w.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"Bonjour"}]}`))
	}))
	defer ts.Close()

	out, err := NewDeepL(ts.URL, "k", time.Second).Translate(context.Background(), "Hello", Auto, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
}

func TestDeepLSourceLang(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "EN", r.PostForm.Get("source_lang"))
		_, _ = w.Write([]byte(`{"translations":[{"text":"Hallo"}]}`))
	}))
	defer ts.Close()

	out, err := NewDeepL(ts.URL, "k", time.Second).Translate(context.Background(), "Hello", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", out)
}

func TestDeepLErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	d := NewDeepL(ts.URL, "k", time.Second)

	_, err := d.Translate(context.Background(), "x", Auto, "fr")
	assert.Equal(t, "TRANSLATOR_ERROR", errs.Reason(err))
	assert.Equal(t, errs.KindTranslation, errs.KindOf(err))

	_, err = d.Translate(context.Background(), "x", "jp", "fr")
	assert.Equal(t, "INVALID_SOURCE_LANG", errs.Reason(err))

	_, err = d.Translate(context.Background(), "x", Auto, "zz")
	assert.Equal(t, "INVALID_TARGET_LANG", errs.Reason(err))
}
