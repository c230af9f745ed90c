package middleware

import (
	"github.com/gin-gonic/gin"
)

// RouteOpt configures a single route.
type RouteOpt struct {
	IsAuth bool
}

var authHandler gin.HandlerFunc = func(c *gin.Context) { c.Next() }

// UseAuth installs the session middleware that IsAuth routes run first.
func UseAuth(h gin.HandlerFunc) {
	authHandler = h
}

func handlers(handler gin.HandlerFunc, opt RouteOpt) []gin.HandlerFunc {
	if opt.IsAuth {
		return []gin.HandlerFunc{authHandler, handler}
	}
	return []gin.HandlerFunc{handler}
}

func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.POST(path, handlers(handler, opt)...)
}

func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.GET(path, handlers(handler, opt)...)
}

func PUT(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.PUT(path, handlers(handler, opt)...)
}

func DELETE(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.DELETE(path, handlers(handler, opt)...)
}
