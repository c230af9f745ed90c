package message

import (
	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/message/service"

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
	middleware.POST(r, "/message", global.Handle(h.send), auth)
	middleware.GET(r, "/messages/:recipient", global.Handle(h.conversation), auth)
	middleware.GET(r, "/messages/:recipient/before/:messageID", global.Handle(h.conversation), auth)
	middleware.GET(r, "/messages/:recipient/attachments", global.Handle(h.conversationAttachments), auth)
	middleware.GET(r, "/messages/room/:roomID", global.Handle(h.room), auth)
	middleware.GET(r, "/messages/room/:roomID/before/:messageID", global.Handle(h.room), auth)
	middleware.GET(r, "/messages/room/:roomID/attachments", global.Handle(h.roomAttachments), auth)
	middleware.GET(r, "/room/last", global.Handle(h.last), auth)
}

func (h *Handler) send(c *gin.Context) (any, error) {
	var req service.SendRequest
	if err := global.Bind(c, &req); err != nil {
		return nil, err
	}
	req.Sender = security.Identity(c)
	msg, err := h.svc.Send(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	return gin.H{"id": msg.ID}, nil
}

func (h *Handler) conversation(c *gin.Context) (any, error) {
	return h.svc.Conversation(c.Request.Context(), security.Identity(c), c.Param("recipient"), c.Param("messageID"))
}

func (h *Handler) conversationAttachments(c *gin.Context) (any, error) {
	return h.svc.ConversationAttachments(c.Request.Context(), security.Identity(c), c.Param("recipient"))
}

func (h *Handler) room(c *gin.Context) (any, error) {
	return h.svc.Room(c.Request.Context(), c.Param("roomID"), c.Param("messageID"))
}

func (h *Handler) roomAttachments(c *gin.Context) (any, error) {
	return h.svc.RoomAttachments(c.Request.Context(), c.Param("roomID"))
}

func (h *Handler) last(c *gin.Context) (any, error) {
	return h.svc.LastFor(c.Request.Context(), security.Identity(c))
}
