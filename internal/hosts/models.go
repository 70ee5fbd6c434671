package hosts

import (
	"time"

	"festivaltickets/internal/tickets"

	"github.com/google/uuid"
)

type HostType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (HostType) TableName() string {
	return "host_types"
}

// Host is a venue that holds events
type Host struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	HostTypeID  uint      `gorm:"not null;index" json:"host_type_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	HostType *HostType   `gorm:"foreignKey:HostTypeID" json:"host_type,omitempty"`
	Location *Location   `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE;" json:"location,omitempty"`
	Hall     *HallDetail `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE;" json:"hall,omitempty"`
}

func (Host) TableName() string {
	return "hosts"
}

type Location struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HostID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"host_id"`
	CityName       string    `gorm:"type:varchar(100);not null;index" json:"city_name"`
	StreetName     string    `gorm:"type:varchar(200);not null" json:"street_name"`
	BuildingNumber string    `gorm:"type:varchar(20);not null" json:"building_number"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
}

func (Location) TableName() string {
	return "locations"
}

// HallDetail is the seating geometry of a host
type HallDetail struct {
	HostID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"host_id"`
	RowAmount        int       `gorm:"not null;check:row_amount > 0" json:"row_amount"`
	SeatsInRow       int       `gorm:"not null;check:seats_in_row > 0" json:"seats_in_row"`
	IsDividedBySeats bool      `gorm:"not null;default:true" json:"is_divided_by_seats"`
}

func (HallDetail) TableName() string {
	return "host_hall_details"
}

func (h HallDetail) Geometry() tickets.HallGeometry {
	return tickets.HallGeometry{
		RowAmount:        h.RowAmount,
		SeatsInRow:       h.SeatsInRow,
		IsDividedBySeats: h.IsDividedBySeats,
	}
}

// HostFilter narrows the host listing
type HostFilter struct {
	CityName   *string
	HostTypeID *uint
}

// HostedEvent is a row of the events table as seen from its host
type HostedEvent struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
}
