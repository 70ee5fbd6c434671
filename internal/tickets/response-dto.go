package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketResponse struct {
	ID             uuid.UUID       `json:"id"`
	RowNum         *int            `json:"row_num,omitempty"`
	SeatNum        *int            `json:"seat_num,omitempty"`
	Status         Status          `json:"status"`
	TicketTypeID   uuid.UUID       `json:"ticket_type_id"`
	TicketTypeName string          `json:"ticket_type_name,omitempty"`
	Price          decimal.Decimal `json:"price"`
}

type TicketTypeResponse struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type HoldResponse struct {
	TicketID  uuid.UUID `json:"ticket_id"`
	HoldToken string    `json:"hold_token"`
	ExpiresAt time.Time `json:"expires_at"`
	TTL       int       `json:"ttl_seconds"`
}

type ConfirmationResponse struct {
	Tickets []TicketWithPrice `json:"tickets"`
	Total   decimal.Decimal   `json:"total"`
}

type PurchaseResponse struct {
	ClientID  uuid.UUID   `json:"client_id"`
	TicketIDs []uuid.UUID `json:"ticket_ids"`
}

func toTicketResponse(t Ticket) TicketResponse {
	resp := TicketResponse{
		ID:           t.ID,
		RowNum:       t.RowNum,
		SeatNum:      t.SeatNum,
		Status:       t.Status,
		TicketTypeID: t.TicketTypeID,
	}
	if t.TicketType != nil {
		resp.TicketTypeName = t.TicketType.Name
		resp.Price = t.TicketType.Price
	}
	return resp
}

func toTicketTypeResponse(tt TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID:    tt.ID,
		Name:  tt.Name,
		Price: tt.Price,
	}
}
