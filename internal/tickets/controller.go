package tickets

import (
	"net/http"

	"festivaltickets/internal/shared/middleware"
	"festivaltickets/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func requireClient(ctx *gin.Context) (uuid.UUID, bool) {
	clientID, ok := middleware.ClientID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Client not authenticated", nil, nil)
		return uuid.Nil, false
	}
	return clientID, true
}

//  QUERIES

// GetEventTickets godoc
// @Summary      Event seats
// @Description  Tickets of an event with live holds shown as HOLD
// @Tags         tickets
// @Produce      json
// @Param        eventId  path  string  true  "Event ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events/{eventId}/seats [get]
func (c *Controller) GetEventTickets(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	tickets, err := c.service.GetEventTickets(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get event tickets", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event tickets retrieved successfully", tickets, nil)
}

func (c *Controller) GetEventTicketTypes(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId")
	if !ok {
		return
	}

	types, err := c.service.GetEventTicketTypes(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get ticket types", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket types retrieved successfully", types, nil)
}

func (c *Controller) ConfirmTickets(ctx *gin.Context) {
	var req ConfirmationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	ids, err := parseIDs(req.TicketIDs)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
		return
	}

	confirmation, err := c.service.GetTicketsWithPrice(ctx.Request.Context(), ids)
	if err != nil {
		response.RespondError(ctx, "Failed to confirm tickets", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets confirmed", confirmation, nil)
}

//  SEAT HOLDING

// HoldSeat godoc
// @Summary      Hold a seat
// @Description  Reserves a seat for the caller for a limited time and returns the hold token
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        ticketId  path  string  true  "Ticket ID"
// @Success      201  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /tickets/{ticketId}/hold [post]
func (c *Controller) HoldSeat(ctx *gin.Context) {
	clientID, ok := requireClient(ctx)
	if !ok {
		return
	}
	ticketID, ok := parseIDParam(ctx, "ticketId")
	if !ok {
		return
	}

	hold, err := c.service.HoldSeat(ctx.Request.Context(), ticketID, clientID)
	if err != nil {
		response.RespondError(ctx, "Failed to hold seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seat held successfully", hold, nil)
}

func (c *Controller) ReleaseHold(ctx *gin.Context) {
	clientID, ok := requireClient(ctx)
	if !ok {
		return
	}
	ticketID, ok := parseIDParam(ctx, "ticketId")
	if !ok {
		return
	}

	var req ReleaseHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.ReleaseHold(ctx.Request.Context(), ticketID, clientID, req.HoldToken); err != nil {
		response.RespondError(ctx, "Failed to release hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", nil, nil)
}

//  STATUS TRANSITIONS

// PurchaseTickets godoc
// @Summary      Purchase tickets
// @Description  Buys the listed tickets; held tickets need the caller's hold token
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  PurchaseRequest  true  "Tickets and hold tokens"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      403  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /tickets/purchase [post]
func (c *Controller) PurchaseTickets(ctx *gin.Context) {
	clientID, ok := requireClient(ctx)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	items := make([]PurchaseItem, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.TicketID)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
			return
		}
		items[i] = PurchaseItem{TicketID: id, HoldToken: item.HoldToken}
	}

	result, err := c.service.PurchaseTickets(ctx.Request.Context(), clientID, items)
	if err != nil {
		response.RespondError(ctx, "Failed to purchase tickets", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets purchased successfully", result, nil)
}

func (c *Controller) ChangeTicketsStatus(ctx *gin.Context) {
	var req ChangeStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	ids, err := parseIDs(req.TicketIDs)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
		return
	}

	var clientID *uuid.UUID
	if req.ClientID != nil {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid client ID", nil, err.Error())
			return
		}
		clientID = &id
	}

	if err := c.service.ChangeTicketsStatus(ctx.Request.Context(), req.Status, ids, clientID); err != nil {
		response.RespondError(ctx, "Failed to change tickets status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets status changed successfully", nil, nil)
}
