package hosts

import (
	"net/http"

	"festivaltickets/internal/shared/config"
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

// GetHosts godoc
// @Summary      List hosts
// @Tags         hosts
// @Produce      json
// @Param        city          query  string  false  "City name"
// @Param        host_type_id  query  int     false  "Host type"
// @Param        page_num      query  int     false  "Page number"
// @Param        page_size     query  int     false  "Page size"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /hosts [get]
func (c *Controller) GetHosts(ctx *gin.Context) {
	var query HostListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page := query.Params.Normalize(c.paging.DefaultPageNum, c.paging.DefaultPageSize, c.paging.MaxPageSize)
	hosts, err := c.service.GetHosts(ctx.Request.Context(), query.Filter(), page)
	if err != nil {
		response.RespondError(ctx, "Failed to get hosts", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hosts retrieved successfully", hosts, nil)
}

func (c *Controller) GetHost(ctx *gin.Context) {
	hostID, ok := parseIDParam(ctx, "hostId")
	if !ok {
		return
	}

	host, err := c.service.GetHostWithDetails(ctx.Request.Context(), hostID)
	if err != nil {
		response.RespondError(ctx, "Failed to get host", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Host retrieved successfully", host, nil)
}

func (c *Controller) GetHostHall(ctx *gin.Context) {
	hostID, ok := parseIDParam(ctx, "hostId")
	if !ok {
		return
	}

	hall, err := c.service.GetHallDetails(ctx.Request.Context(), hostID)
	if err != nil {
		response.RespondError(ctx, "Failed to get hall details", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hall details retrieved successfully", hall, nil)
}

func (c *Controller) GetEventHall(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	hall, err := c.service.GetHallDetailsByEventID(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get hall details", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hall details retrieved successfully", hall, nil)
}

func (c *Controller) GetHostedEvents(ctx *gin.Context) {
	hostID, ok := parseIDParam(ctx, "hostId")
	if !ok {
		return
	}

	var query HostListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page := query.Params.Normalize(c.paging.DefaultPageNum, c.paging.DefaultPageSize, c.paging.MaxPageSize)
	events, err := c.service.GetHostedEvents(ctx.Request.Context(), hostID, page)
	if err != nil {
		response.RespondError(ctx, "Failed to get hosted events", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hosted events retrieved successfully", events, nil)
}

func (c *Controller) GetHostTypes(ctx *gin.Context) {
	types, err := c.service.GetHostTypes(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, "Failed to get host types", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Host types retrieved successfully", types, nil)
}

func (c *Controller) GetCities(ctx *gin.Context) {
	cities, err := c.service.GetCities(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, "Failed to get cities", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cities retrieved successfully", cities, nil)
}
