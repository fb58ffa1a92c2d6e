package detection

import "github.com/gin-gonic/gin"

// RegisterRoutes registers detection routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	d := r.Group("/detection")
	{
		d.POST("/image", h.AnalyzeImage)
		d.POST("/audio", h.AnalyzeAudio)
		d.POST("/video", h.AnalyzeVideo)
		d.POST("/text", h.AnalyzeText)

		d.GET("/history", h.History)
		d.GET("/results/:id", h.GetResult)
		d.POST("/check-duplicate", h.CheckDuplicate)
		d.GET("/export", h.Export)
	}
}
