package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	// Public routes - anyone can browse events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)
		publicEvents.GET("/:eventId", controller.GetEvent)
	}

	// Any signed-in device can organize events
	authed := router.Group("")
	authed.Use(auth)
	{
		authed.POST("/events", controller.CreateEvent)
		authed.GET("/users/me/events", controller.GetMyEvents)
		authed.PUT("/events/:eventId", RequireOrganizer(controller.service), controller.UpdateEvent)
	}
}
