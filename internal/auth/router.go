package auth

import (
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all auth routes
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	group := rg.Group("/auth")
	{
		// Public routes
		group.POST("/device", controller.DeviceAuth)
		group.POST("/refresh", controller.RefreshToken)
		group.POST("/logout", controller.Logout)

		protected := group.Group("")
		protected.Use(auth)
		{
			protected.GET("/me", controller.GetMe)
		}
	}
}
