package auth

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(v1 *gin.RouterGroup, h *Handler) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}
}

func RegisterProtectedRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.GET("/auth/me", h.Me)
}
