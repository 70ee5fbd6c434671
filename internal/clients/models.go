package clients

import (
	"time"

	"festivaltickets/internal/events"
	"festivaltickets/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a registered buyer or organizer.
// Subject is the external identity the client authenticated with.
type Client struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Surname      string         `gorm:"type:varchar(100);not null" json:"surname"`
	Email        string         `gorm:"type:varchar(255);not null" json:"email"`
	Phone        string         `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Subject      string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"subject"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         constants.Role `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	FavouriteEvents []events.Event `gorm:"many2many:client_favourite_events;constraint:OnDelete:CASCADE;" json:"favourite_events,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// NewClient is the data required to register a client
type NewClient struct {
	Name         string
	Surname      string
	Email        string
	Phone        string
	Subject      string
	PasswordHash string
	Role         constants.Role
}

// FavouriteEvent is an event marked as favourite by a client
type FavouriteEvent struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	StartDate time.Time     `json:"start_date"`
	HostName  string        `json:"host_name"`
	Status    events.Status `json:"status"`
}

// PurchasedTicket is a sold ticket together with its type and event
type PurchasedTicket struct {
	ID             uuid.UUID       `json:"id"`
	RowNum         *int            `json:"row_num,omitempty"`
	SeatNum        *int            `json:"seat_num,omitempty"`
	TicketTypeName string          `json:"ticket_type_name"`
	Price          decimal.Decimal `json:"price"`
	EventID        uuid.UUID       `json:"event_id"`
	EventTitle     string          `json:"event_title"`
	EventStartDate time.Time       `json:"event_start_date"`
}
