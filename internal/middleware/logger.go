package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorLogger logs failed requests with full detail server-side and turns
// panics into a safe JSON 500. Clients never see internals.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			status := c.Writer.Status()
			if status >= http.StatusInternalServerError || len(c.Errors) > 0 {
				log.Printf("%s %s -> %d in %s errors=%v",
					c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.Errors.Errors())
			}
		}()

		c.Next()
	}
}
