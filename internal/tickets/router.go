package tickets

import (
	"festivaltickets/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {

	// PUBLIC TICKET QUERIES

	rg.GET("/events/:eventId/seats", controller.GetEventTickets)            // GET /api/v1/events/:eventId/seats
	rg.GET("/events/:eventId/ticket-types", controller.GetEventTicketTypes) // GET /api/v1/events/:eventId/ticket-types

	// CLIENT PURCHASE FLOW

	tickets := rg.Group("/tickets")
	tickets.Use(auth)
	{
		tickets.POST("/:ticketId/hold", controller.HoldSeat)      // POST /api/v1/tickets/:ticketId/hold
		tickets.DELETE("/:ticketId/hold", controller.ReleaseHold) // DELETE /api/v1/tickets/:ticketId/hold
		tickets.POST("/confirmation", controller.ConfirmTickets)  // POST /api/v1/tickets/confirmation
		tickets.POST("/purchase", controller.PurchaseTickets)     // POST /api/v1/tickets/purchase
	}

	// ORGANIZER OPERATIONS

	organizer := rg.Group("/organizer/tickets")
	organizer.Use(auth, middleware.RequireOrganizer())
	{
		organizer.PATCH("/status", controller.ChangeTicketsStatus) // PATCH /api/v1/organizer/tickets/status
	}
}
