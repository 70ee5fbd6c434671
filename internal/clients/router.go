package clients

import (
	"festivaltickets/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupClientRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	me := rg.Group("/clients/me")
	me.Use(auth)
	{
		me.GET("/favourites", controller.GetFavouriteEvents)             // GET /api/v1/clients/me/favourites
		me.GET("/favourites/:eventId", controller.IsInFavourite)         // GET /api/v1/clients/me/favourites/:eventId
		me.PUT("/favourites/:eventId", controller.ChangeFavouriteStatus) // PUT /api/v1/clients/me/favourites/:eventId
		me.GET("/tickets", controller.GetPurchasedTickets)               // GET /api/v1/clients/me/tickets
	}

	rg.DELETE("/clients/:clientId", auth, middleware.RequireOrganizer(), controller.DeleteClient)
}
