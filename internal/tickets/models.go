package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketType is a named price category of one event
type TicketType struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_ticket_type_event_name" json:"event_id"`
	Name      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_ticket_type_event_name" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`

	Tickets []Ticket `gorm:"foreignKey:TicketTypeID;constraint:OnDelete:CASCADE;" json:"tickets,omitempty"`
}

func (TicketType) TableName() string {
	return "ticket_types"
}

// Ticket is one seat (or one general admission place) of an event.
// RowNum and SeatNum are nil for general admission.
type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RowNum       *int       `gorm:"index:idx_ticket_position" json:"row_num,omitempty"`
	SeatNum      *int       `gorm:"index:idx_ticket_position" json:"seat_num,omitempty"`
	TicketTypeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	Status       Status     `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	ClientID     *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	TicketType *TicketType `gorm:"foreignKey:TicketTypeID" json:"ticket_type,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) IsAvailable() bool {
	return t.Status == StatusAvailable
}

// HallGeometry describes the seating of a host
type HallGeometry struct {
	RowAmount        int
	SeatsInRow       int
	IsDividedBySeats bool
}

// TicketWithPrice is the confirmation view of a ticket
type TicketWithPrice struct {
	ID             uuid.UUID       `json:"id"`
	RowNum         *int            `json:"row_num,omitempty"`
	SeatNum        *int            `json:"seat_num,omitempty"`
	TicketTypeName string          `json:"ticket_type_name"`
	Price          decimal.Decimal `json:"price"`
	EventID        uuid.UUID       `json:"event_id"`
}

// PurchaseItem pairs a ticket with the token of the hold taken on it.
// HoldToken may be empty when the ticket was never held.
type PurchaseItem struct {
	TicketID  uuid.UUID
	HoldToken string
}
