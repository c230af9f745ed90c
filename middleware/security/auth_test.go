package security

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"PolyChat/global"
	"PolyChat/tools/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, token string) (string, error) {
	if id, ok := m[token]; ok {
		return id, nil
	}
	return "", errs.ErrInvalidSession.Wrap()
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Middleware(mapResolver{"good": "alice"}, nil), func(c *gin.Context) {
		global.WriteOK(c, gin.H{"username": Identity(c), "token": Token(c)})
	})
	return r
}

func do(t *testing.T, r *gin.Engine, req *http.Request) (int, global.Msg) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var m global.Msg
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return w.Code, m
}

func TestMiddleware(t *testing.T) {
	r := newEngine()

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		code   string
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, "SESSION_REQUIRED"},
		{"bad cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: "nope"}) }, http.StatusUnauthorized, "INVALID_SESSIONID"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: "good"}) }, http.StatusOK, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			status, m := do(t, r, req)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, m.Code)
			if tt.status == http.StatusOK {
				assert.False(t, m.Error)
				assert.Equal(t, "alice", m.Data.(map[string]any)["username"])
			}
		})
	}
}
