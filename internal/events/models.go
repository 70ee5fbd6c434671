package events

import (
	"time"

	"festivaltickets/internal/hosts"
	"festivaltickets/internal/tickets"

	"github.com/google/uuid"
)

type EventType struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Genres []Genre `gorm:"foreignKey:EventTypeID" json:"genres,omitempty"`
}

func (EventType) TableName() string {
	return "event_types"
}

type Genre struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	EventTypeID uint       `gorm:"not null;index" json:"event_type_id"`
	EventType   *EventType `gorm:"foreignKey:EventTypeID" json:"event_type,omitempty"`
}

func (Genre) TableName() string {
	return "genres"
}

// Event is a planned or finished performance at a host
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Status    Status    `gorm:"type:varchar(20);not null;default:'PLANNED';index" json:"status"`
	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	GenreID   uint      `gorm:"not null;index" json:"genre_id"`
	HostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"host_id"`

	// Unique when set; the partial index lives in the database constraints
	IdempotencyKey *string `gorm:"type:varchar(255)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Genre   *Genre        `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	Host    *hosts.Host   `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Details *EventDetails `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;" json:"details,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) HostName() string {
	if e.Host == nil {
		return "Unknown host"
	}
	return e.Host.Name
}

type EventDetails struct {
	EventID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"event_id"`
	Description string    `gorm:"type:text" json:"description"`
	Duration    int       `gorm:"not null;check:duration > 0" json:"duration"`
}

func (EventDetails) TableName() string {
	return "event_details"
}

// EventFilter narrows an event listing; nil fields are not applied
type EventFilter struct {
	CityName    *string
	StartDate   *time.Time
	EndDate     *time.Time
	HostID      *uuid.UUID
	EventTypeID *uint
	GenreID     *uint
	Status      *Status
}

// PlanEventInput is everything needed to plan an event and lay out its tickets
type PlanEventInput struct {
	Title          string
	Description    string
	Duration       int
	StartDate      time.Time
	GenreID        uint
	HostID         uuid.UUID
	TicketTypes    []tickets.TicketTypeSpec
	RowMapping     []string
	IdempotencyKey string
}
