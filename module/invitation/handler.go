package invitation

import (
	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/invitation/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRoutes) {
	middleware.POST(r, "/invitation", global.Handle(h.invite), middleware.RouteOpt{IsAuth: true})
	middleware.PUT(r, "/invitation", global.Handle(h.respond), middleware.RouteOpt{IsAuth: true})
}

func (h *Handler) invite(c *gin.Context) (any, error) {
	var req struct {
		Invitee string `json:"invitee"`
		RoomID  string `json:"roomID"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	id, err := h.svc.Invite(c.Request.Context(), security.Identity(c), req.Invitee, req.RoomID)
	if err != nil {
		return nil, err
	}
	return gin.H{"id": id}, nil
}

func (h *Handler) respond(c *gin.Context) (any, error) {
	var req struct {
		InvitationID string `json:"invitationID"`
		Action       string `json:"action"`
	}
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	return nil, h.svc.Respond(c.Request.Context(), security.Identity(c), req.InvitationID, req.Action)
}
