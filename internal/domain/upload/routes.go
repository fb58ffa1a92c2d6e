package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the streaming upload endpoint. It lives outside the
// versioned API group and answers its own CORS preflight, so it is wired on
// the engine directly.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.Any("/api/upload", h.Handle)
}
