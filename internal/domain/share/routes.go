package share

import "github.com/gin-gonic/gin"

// RegisterRoutes registers owner-facing share routes under the protected
// group and the token view under the public group.
func RegisterRoutes(public, protected *gin.RouterGroup, h *Handler) {
	shares := protected.Group("/shares")
	{
		shares.POST("", h.Create)
		shares.GET("", h.ListMy)
		shares.GET("/:token/stats", h.Stats)
	}

	public.GET("/shared/:token", h.PublicView)
}
