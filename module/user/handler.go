package user

import (
	"time"

	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/user/service"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "sid"

// Invalidator drops a cached session token.
type Invalidator interface {
	Invalidate(token string)
}

type Handler struct {
	svc      *service.Service
	sessions Invalidator
}

func NewHandler(svc *service.Service, sessions Invalidator) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Register(r gin.IRoutes) {
	middleware.POST(r, "/user/signup", global.Handle(h.signup), middleware.RouteOpt{})
	middleware.POST(r, "/user/login", global.Handle(h.login), middleware.RouteOpt{})
	middleware.POST(r, "/user/logout", global.Handle(h.logout), middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/user/state", global.Handle(h.state), middleware.RouteOpt{IsAuth: true})
	middleware.PUT(r, "/user/status", global.Handle(h.status), middleware.RouteOpt{IsAuth: true})
	middleware.PUT(r, "/user/avatar", global.Handle(h.avatar), middleware.RouteOpt{IsAuth: true})
	middleware.PUT(r, "/user/lang", global.Handle(h.lang), middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/users", global.Handle(h.search), middleware.RouteOpt{IsAuth: true})
}

func setSession(c *gin.Context, s *service.Session) {
	maxAge := int(time.Until(s.ExpireAt).Seconds())
	c.SetCookie(sessionCookie, s.SessionID, maxAge, "/", "", false, false)
}

func (h *Handler) signup(c *gin.Context) (any, error) {
	var req service.SignupRequest
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	s, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	setSession(c, s)
	return s, nil
}

func (h *Handler) login(c *gin.Context) (any, error) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	s, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	setSession(c, s)
	return s, nil
}

func (h *Handler) logout(c *gin.Context) (any, error) {
	if h.sessions != nil {
		h.sessions.Invalidate(security.Token(c))
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, false)
	return nil, nil
}

func (h *Handler) state(c *gin.Context) (any, error) {
	return h.svc.State(c.Request.Context(), security.Identity(c))
}

func (h *Handler) status(c *gin.Context) (any, error) {
	var req struct {
		Status string `json:"status"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.SetStatus(c.Request.Context(), security.Identity(c), req.Status)
}

func (h *Handler) avatar(c *gin.Context) (any, error) {
	var req struct {
		AvatarID string `json:"avatarID"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.SetAvatar(c.Request.Context(), security.Identity(c), req.AvatarID)
}

func (h *Handler) lang(c *gin.Context) (any, error) {
	var req struct {
		Lang string `json:"lang"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.SetLang(c.Request.Context(), security.Identity(c), req.Lang)
}

func (h *Handler) search(c *gin.Context) (any, error) {
	var req struct {
		Query string `json:"query"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return h.svc.Search(c.Request.Context(), security.Identity(c), req.Query)
}
