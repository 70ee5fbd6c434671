package events

import (
	"festivaltickets/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	// Public routes - anyone can browse events
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)
		events.GET("/:eventId", controller.GetEvent)
		events.GET("/:eventId/details", controller.GetEventWithDetails)
	}

	rg.GET("/event-types", controller.GetEventTypes)
	rg.GET("/event-types/:eventTypeId/genres", controller.GetGenres)

	// Organizer routes - planning and lifecycle management
	organizer := rg.Group("/organizer/events")
	organizer.Use(auth, middleware.RequireOrganizer())
	{
		organizer.POST("", controller.PlanEvent)                     // POST /api/v1/organizer/events
		organizer.POST("/:eventId/archive", controller.ArchiveEvent) // POST /api/v1/organizer/events/:eventId/archive
		organizer.DELETE("/:eventId", controller.DeleteEvent)        // DELETE /api/v1/organizer/events/:eventId
	}
}
