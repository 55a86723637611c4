package waitlist

import (
	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes registers entrant and organizer waitlist routes. auth
// authenticates the device; organizerOnly checks ownership of :eventId.
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller *Controller, auth, organizerOnly gin.HandlerFunc) {
	entrant := rg.Group("/events/:eventId/waitlist")
	entrant.Use(auth)
	{
		entrant.POST("", controller.JoinWaitlist)
		entrant.DELETE("", controller.LeaveWaitlist)
		entrant.GET("/me", controller.GetMyEntry)
		entrant.POST("/respond", controller.Respond)
		entrant.POST("/cancel", controller.Cancel)
	}

	me := rg.Group("/users/me")
	me.Use(auth)
	{
		me.GET("/waitlist", controller.GetMyWaitlists)
	}

	organizer := rg.Group("/organizer/events/:eventId")
	organizer.Use(auth, organizerOnly)
	{
		organizer.GET("/entrants", controller.ListEntrants)
	}
}
