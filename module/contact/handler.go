package contact

import (
	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/contact/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRoutes) {
	middleware.GET(r, "/contacts", global.Handle(h.list), middleware.RouteOpt{IsAuth: true})
	middleware.DELETE(r, "/contact/:username", global.Handle(h.delete), middleware.RouteOpt{IsAuth: true})
}

func (h *Handler) list(c *gin.Context) (any, error) {
	return h.svc.List(c.Request.Context(), security.Identity(c))
}

func (h *Handler) delete(c *gin.Context) (any, error) {
	return nil, h.svc.Delete(c.Request.Context(), security.Identity(c), c.Param("username"))
}
