package hosts

import "github.com/gin-gonic/gin"

func SetupHostRoutes(rg *gin.RouterGroup, controller *Controller) {
	hosts := rg.Group("/hosts")
	{
		hosts.GET("", controller.GetHosts)                       // GET /api/v1/hosts
		hosts.GET("/:hostId", controller.GetHost)                // GET /api/v1/hosts/:hostId
		hosts.GET("/:hostId/hall", controller.GetHostHall)       // GET /api/v1/hosts/:hostId/hall
		hosts.GET("/:hostId/events", controller.GetHostedEvents) // GET /api/v1/hosts/:hostId/events
	}

	rg.GET("/host-types", controller.GetHostTypes)           // GET /api/v1/host-types
	rg.GET("/cities", controller.GetCities)                  // GET /api/v1/cities
	rg.GET("/events/:eventId/hall", controller.GetEventHall) // GET /api/v1/events/:eventId/hall
}
