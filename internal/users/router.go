package users

import (
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	me := rg.Group("/users/me")
	me.Use(auth)
	{
		me.GET("", controller.GetMe)
		me.PUT("", controller.UpdateMe)
		me.PUT("/preferences", controller.UpdatePreferences)
	}
}
