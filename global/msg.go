package global

import (
	"net/http"

	"PolyChat/logger"
	"PolyChat/tools/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Msg is the JSON envelope every HTTP route answers with.
type Msg struct {
	Error bool   `json:"error"`
	Code  string `json:"code,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func Success(data any) *Msg {
	return &Msg{Data: data}
}

func Failure(err error) *Msg {
	return &Msg{Error: true, Code: errs.Reason(err)}
}

// StatusOf maps an error kind to the HTTP status it is served with.
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindTranslation:
		return http.StatusBadGateway
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success(data))
}

func WriteErr(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(StatusOf(err), Failure(err))
}

// Handle adapts a handler returning (data, error) to gin and renders the envelope.
func Handle(fn func(c *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fn(c)
		if err != nil {
			WriteErr(c, err)
			return
		}
		WriteOK(c, data)
	}
}

// Bind decodes the JSON body into req, failing with INVALID_REQUEST.
func Bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errs.ErrInvalidRequest.WrapMsg(err.Error())
	}
	return nil
}
