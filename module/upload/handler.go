package upload

import (
	"errors"
	"net/http"

	"PolyChat/global"
	"PolyChat/middleware"
	"PolyChat/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	attachments *Store
	avatars     *Store
}

func NewHandler(attachments, avatars *Store) *Handler {
	return &Handler{attachments: attachments, avatars: avatars}
}

// Register mounts the upload routes and serves stored files read only.
func (h *Handler) Register(r gin.IRouter) {
	middleware.POST(r, "/attachment", global.Handle(h.save(h.attachments)), middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/avatar", global.Handle(h.save(h.avatars)), middleware.RouteOpt{IsAuth: true})
	r.Static("/attachments", h.attachments.Dir())
	r.Static("/avatars", h.avatars.Dir())
}

func (h *Handler) save(s *Store) func(c *gin.Context) (any, error) {
	return func(c *gin.Context) (any, error) {
		if s.maxBytes > 0 {
			// multipart framing needs a little room past the file itself
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes+1<<20)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, errs.ErrFileTooLarge.Wrap()
			}
			return nil, errs.ErrInvalidRequest.WrapMsg(err.Error())
		}
		name, err := s.Save(fh)
		if err != nil {
			return nil, err
		}
		return gin.H{"fileName": name}, nil
	}
}
