package lottery

import (
	"github.com/gin-gonic/gin"
)

func SetupLotteryRoutes(rg *gin.RouterGroup, controller *Controller, auth, organizerOnly gin.HandlerFunc) {
	organizer := rg.Group("/organizer/events/:eventId")
	organizer.Use(auth, organizerOnly)
	{
		organizer.POST("/draw", controller.Draw)
		organizer.POST("/replace", controller.Replace)
		organizer.POST("/entrants/:userId/revoke", controller.Revoke)
		organizer.GET("/draws", controller.ListDraws)
	}
}
