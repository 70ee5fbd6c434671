package events

import (
	"net/http"
	"strconv"

	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyHeader carries the client supplied key of a planning request
const IdempotencyHeader = "Idempotency-Key"

type Controller struct {
	service     Service
	paging      config.PaginationConfig
	defaultCity string
}

func NewController(service Service, paging config.PaginationConfig, defaultCity string) *Controller {
	return &Controller{service: service, paging: paging, defaultCity: defaultCity}
}

func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// ListEvents godoc
// @Summary      List events
// @Description  Events ordered by start date. Without a city the default city is used; city=any lists all cities.
// @Tags         events
// @Produce      json
// @Param        city           query  string  false  "City name"
// @Param        start_date     query  string  false  "Earliest start (YYYY-MM-DD)"
// @Param        end_date       query  string  false  "Latest start day (YYYY-MM-DD)"
// @Param        host_id        query  string  false  "Host ID"
// @Param        event_type_id  query  int     false  "Event type"
// @Param        genre_id       query  int     false  "Genre"
// @Param        status         query  string  false  "PLANNED or ENDED"
// @Param        page_num       query  int     false  "Page number"
// @Param        page_size      query  int     false  "Page size"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events [get]
func (c *Controller) ListEvents(ctx *gin.Context) {
	var query EventListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	filter, err := query.Filter(c.defaultCity)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page := query.Params.Normalize(c.paging.DefaultPageNum, c.paging.DefaultPageSize, c.paging.MaxPageSize)
	events, err := c.service.ListEvents(ctx.Request.Context(), filter, page)
	if err != nil {
		response.RespondError(ctx, "Failed to list events", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func (c *Controller) GetEvent(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	event, err := c.service.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get event", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

func (c *Controller) GetEventWithDetails(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	event, err := c.service.GetEventWithDetails(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get event details", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event details retrieved successfully", event, nil)
}

func (c *Controller) GetEventTypes(ctx *gin.Context) {
	types, err := c.service.GetEventTypes(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, "Failed to get event types", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event types retrieved successfully", types, nil)
}

func (c *Controller) GetGenres(ctx *gin.Context) {
	eventTypeID, err := strconv.ParseUint(ctx.Param("eventTypeId"), 10, 32)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid eventTypeId", nil, err.Error())
		return
	}

	genres, err := c.service.GetGenres(ctx.Request.Context(), uint(eventTypeID))
	if err != nil {
		response.RespondError(ctx, "Failed to get genres", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Genres retrieved successfully", genres, nil)
}

//  ORGANIZER OPERATIONS

// PlanEvent godoc
// @Summary      Plan an event
// @Description  Creates the event with its ticket types and tickets laid out over the host hall
// @Tags         organizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string            false  "Replay protection key"
// @Param        request          body    PlanEventRequest  true   "Event to plan"
// @Success      201  {object}  response.StandardApiResponse
// @Success      200  {object}  response.StandardApiResponse  "Replayed request"
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /organizer/events [post]
func (c *Controller) PlanEvent(ctx *gin.Context) {
	var req PlanEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	input, err := req.ToInput(ctx.GetHeader(IdempotencyHeader))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	planned, err := c.service.PlanEvent(ctx.Request.Context(), input)
	if err != nil {
		response.RespondError(ctx, "Failed to plan event", err)
		return
	}

	if planned.Replayed {
		response.RespondJSON(ctx, "success", http.StatusOK, "Event already planned", planned, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Event planned successfully", planned, nil)
}

func (c *Controller) ArchiveEvent(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	if err := c.service.ArchiveEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondError(ctx, "Failed to archive event", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event archived successfully", nil, nil)
}

func (c *Controller) DeleteEvent(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	if err := c.service.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondError(ctx, "Failed to delete event", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event deleted successfully", nil, nil)
}
