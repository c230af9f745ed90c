package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origin answers CORS for the allowed origins; "*" or an empty list allows all.
// It never calls Next, so it can run inside the Manager chain.
func Origin(allow []string) gin.HandlerFunc {
	all := len(allow) == 0
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		if o == "*" {
			all = true
		}
		set[o] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := set[origin]; ok || all {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Vary", "Origin")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
		}
	}
}
