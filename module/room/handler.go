package room

import (
	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/room/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.GET(r, "/room/:roomID", global.Handle(h.get), auth)
	middleware.POST(r, "/room", global.Handle(h.create), auth)
	middleware.PUT(r, "/room", global.Handle(h.update), auth)
	middleware.DELETE(r, "/room/:roomID", global.Handle(h.delete), auth)
	middleware.POST(r, "/room/joinrequest", global.Handle(h.requestJoin), auth)
	middleware.PUT(r, "/room/joinrequest", global.Handle(h.answerJoin), auth)
	middleware.POST(r, "/room/leave", global.Handle(h.leave), auth)
	middleware.POST(r, "/rooms", global.Handle(h.search), auth)
}

func (h *Handler) get(c *gin.Context) (any, error) {
	return h.svc.Get(c.Request.Context(), security.Identity(c), c.Param("roomID"))
}

func (h *Handler) create(c *gin.Context) (any, error) {
	var req struct {
		Name string `json:"name"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	id, err := h.svc.Create(c.Request.Context(), security.Identity(c), req.Name)
	if err != nil {
		return nil, err
	}
	return gin.H{"id": id}, nil
}

func (h *Handler) update(c *gin.Context) (any, error) {
	var req struct {
		RoomID   string `json:"roomID"`
		Property string `json:"property"`
		Value    any    `json:"value"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.Update(c.Request.Context(), security.Identity(c), req.RoomID, req.Property, req.Value)
}

func (h *Handler) delete(c *gin.Context) (any, error) {
	return h.svc.Delete(c.Request.Context(), security.Identity(c), c.Param("roomID"))
}

func (h *Handler) requestJoin(c *gin.Context) (any, error) {
	var req struct {
		RoomID string `json:"roomID"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.RequestJoin(c.Request.Context(), security.Identity(c), req.RoomID)
}

func (h *Handler) answerJoin(c *gin.Context) (any, error) {
	var req struct {
		JoinRequestID string `json:"joinRequestID"`
		Action        string `json:"action"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.AnswerJoin(c.Request.Context(), security.Identity(c), req.JoinRequestID, req.Action)
}

func (h *Handler) leave(c *gin.Context) (any, error) {
	var req struct {
		RoomID string `json:"roomID"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.Leave(c.Request.Context(), security.Identity(c), req.RoomID)
}

func (h *Handler) search(c *gin.Context) (any, error) {
	var req struct {
		Query string `json:"query"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return h.svc.Search(c.Request.Context(), req.Query)
}
