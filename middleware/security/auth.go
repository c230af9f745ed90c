package security

import (
	"context"
	"strings"

	"PolyChat/global"
	"PolyChat/tools/errs"

	"github.com/gin-gonic/gin"
)

// context keys shared by every route module
const (
	CtxIdentityKey = "identity" // string
	CtxTokenKey    = "token"    // string
)

// Resolver turns a session token into an identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type Options struct {
	Cookie                    string // default "sid"
	HeaderToken               string // default "authorization"
	EnableAuthorizationBearer bool   // default true
}

func DefaultOptions() *Options {
	return &Options{
		Cookie:                    "sid",
		HeaderToken:               "authorization",
		EnableAuthorizationBearer: true,
	}
}

// TokenOf reads the session token from the cookie, then the headers.
func TokenOf(c *gin.Context, opts *Options) string {
	if opts.Cookie != "" {
		if v, err := c.Cookie(opts.Cookie); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
	if token == "" {
		return ""
	}
	// Authorization: Bearer xxx
	if opts.EnableAuthorizationBearer && strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	return token
}

func Middleware(r Resolver, opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := TokenOf(c, opts)
		if token == "" {
			global.WriteErr(c, errs.ErrSessionRequired.Wrap())
			return
		}
		identity, err := r.Resolve(c.Request.Context(), token)
		if err != nil {
			global.WriteErr(c, err)
			return
		}
		c.Set(CtxTokenKey, token)
		c.Set(CtxIdentityKey, identity)
		c.Next()
	}
}

// Identity is the username set by Middleware, empty on public routes.
func Identity(c *gin.Context) string {
	return c.GetString(CtxIdentityKey)
}

func Token(c *gin.Context) string {
	return c.GetString(CtxTokenKey)
}
