package notifications

import (
	"github.com/gin-gonic/gin"
)

func SetupNotificationRoutes(rg *gin.RouterGroup, controller *Controller, auth, organizerOnly gin.HandlerFunc) {
	me := rg.Group("/users/me")
	me.Use(auth)
	{
		me.GET("/notifications", controller.GetMyNotifications)
	}

	organizer := rg.Group("/organizer/events/:eventId/notifications")
	organizer.Use(auth, organizerOnly)
	{
		organizer.POST("", controller.Broadcast)
		organizer.GET("", controller.ListBroadcasts)
	}
}
