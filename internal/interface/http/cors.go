package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsMiddleware lets a browser frontend served from another origin use
// the mock API during local development. An empty allow list is treated
// as allow-all, which is what the dev loop wants.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	wildcard := len(allowed) == 0
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		switch {
		case wildcard:
			headers.Set("Access-Control-Allow-Origin", "*")
		case originAllowed(c.GetHeader("Origin"), allowed):
			headers.Set("Access-Control-Allow-Origin", c.GetHeader("Origin"))
			headers.Set("Vary", "Origin")
		default:
			headers.Set("Access-Control-Allow-Origin", allowed[0])
		}
		headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		headers.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}
