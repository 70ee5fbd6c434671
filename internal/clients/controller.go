package clients

import (
	"net/http"

	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/middleware"
	"festivaltickets/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	paging  config.PaginationConfig
}

func NewController(service Service, paging config.PaginationConfig) *Controller {
	return &Controller{service: service, paging: paging}
}

func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func currentClient(ctx *gin.Context) (uuid.UUID, bool) {
	clientID, ok := middleware.ClientID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Unauthorized", nil, "client not authenticated")
		return uuid.Nil, false
	}
	return clientID, true
}

func (c *Controller) page(ctx *gin.Context) (PageQuery, bool) {
	var query PageQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return query, false
	}
	query.Params = query.Params.Normalize(c.paging.DefaultPageNum, c.paging.DefaultPageSize, c.paging.MaxPageSize)
	return query, true
}

// GetFavouriteEvents godoc
// @Summary      List favourite events of the current client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page_num   query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /clients/me/favourites [get]
func (c *Controller) GetFavouriteEvents(ctx *gin.Context) {
	clientID, ok := currentClient(ctx)
	if !ok {
		return
	}
	query, ok := c.page(ctx)
	if !ok {
		return
	}

	favourites, err := c.service.GetFavouriteEvents(ctx.Request.Context(), clientID, query.Params)
	if err != nil {
		response.RespondError(ctx, "Failed to get favourite events", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Favourite events retrieved successfully", favourites, nil)
}

func (c *Controller) IsInFavourite(ctx *gin.Context) {
	clientID, ok := currentClient(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	favourite, err := c.service.IsInFavourite(ctx.Request.Context(), eventID, clientID)
	if err != nil {
		response.RespondError(ctx, "Failed to get favourite status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Favourite status retrieved successfully",
		FavouriteStatusResponse{EventID: eventID, IsFavourite: favourite}, nil)
}

// ChangeFavouriteStatus godoc
// @Summary      Add or remove an event from favourites
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path  string                  true  "Event ID"
// @Param        request  body  ChangeFavouriteRequest  true  "Desired status"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse  "Status already set"
// @Router       /clients/me/favourites/{eventId} [put]
func (c *Controller) ChangeFavouriteStatus(ctx *gin.Context) {
	clientID, ok := currentClient(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	var req ChangeFavouriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.ChangeFavouriteStatus(ctx.Request.Context(), eventID, clientID, *req.IsFavourite); err != nil {
		response.RespondError(ctx, "Failed to change favourite status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Favourite status changed successfully",
		FavouriteStatusResponse{EventID: eventID, IsFavourite: *req.IsFavourite}, nil)
}

// GetPurchasedTickets godoc
// @Summary      List tickets bought by the current client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page_num   query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /clients/me/tickets [get]
func (c *Controller) GetPurchasedTickets(ctx *gin.Context) {
	clientID, ok := currentClient(ctx)
	if !ok {
		return
	}
	query, ok := c.page(ctx)
	if !ok {
		return
	}

	purchased, err := c.service.GetPurchasedTickets(ctx.Request.Context(), clientID, query.Params)
	if err != nil {
		response.RespondError(ctx, "Failed to get purchased tickets", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Purchased tickets retrieved successfully", purchased, nil)
}

func (c *Controller) DeleteClient(ctx *gin.Context) {
	clientID, ok := parseIDParam(ctx, "clientId")
	if !ok {
		return
	}

	if err := c.service.DeleteClient(ctx.Request.Context(), clientID); err != nil {
		response.RespondError(ctx, "Failed to delete client", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Client deleted successfully", nil, nil)
}
