package events

import (
	"fmt"
	"strings"
	"time"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/tickets"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketTypeRequest struct {
	Name  string          `json:"name" binding:"required,max=100"`
	Price decimal.Decimal `json:"price"`
}

type PlanEventRequest struct {
	Title       string              `json:"title" binding:"required,min=3,max=255"`
	Description string              `json:"description" binding:"max=4000"`
	Duration    int                 `json:"duration" binding:"required,min=1,max=1000"`
	StartDate   time.Time           `json:"start_date" binding:"required"`
	GenreID     uint                `json:"genre_id" binding:"required"`
	HostID      string              `json:"host_id" binding:"required,uuid"`
	TicketTypes []TicketTypeRequest `json:"ticket_types" binding:"required,min=1,dive"`

	// Ticket type name per hall row, required for halls divided by seats
	RowMapping []string `json:"row_mapping"`
}

func (r PlanEventRequest) ToInput(idempotencyKey string) (PlanEventInput, error) {
	hostID, err := uuid.Parse(r.HostID)
	if err != nil {
		return PlanEventInput{}, fmt.Errorf("host id: %w", apperrors.ErrInvalidInput)
	}

	specs := make([]tickets.TicketTypeSpec, len(r.TicketTypes))
	for i, tt := range r.TicketTypes {
		specs[i] = tickets.TicketTypeSpec{Name: strings.TrimSpace(tt.Name), Price: tt.Price}
	}

	return PlanEventInput{
		Title:          strings.TrimSpace(r.Title),
		Description:    r.Description,
		Duration:       r.Duration,
		StartDate:      r.StartDate,
		GenreID:        r.GenreID,
		HostID:         hostID,
		TicketTypes:    specs,
		RowMapping:     r.RowMapping,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}, nil
}

// EventListQuery binds the listing filters. An absent city falls back to the
// configured default city; "any" disables the city filter.
type EventListQuery struct {
	pagination.Params
	CityName    string     `form:"city"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	HostID      string     `form:"host_id" binding:"omitempty,uuid"`
	EventTypeID uint       `form:"event_type_id"`
	GenreID     uint       `form:"genre_id"`
	Status      string     `form:"status"`
}

const anyCity = "any"

func (q EventListQuery) Filter(defaultCity string) (EventFilter, error) {
	var f EventFilter

	city := strings.TrimSpace(q.CityName)
	if city == "" {
		city = defaultCity
	}
	if city != "" && !strings.EqualFold(city, anyCity) {
		f.CityName = &city
	}

	f.StartDate = q.StartDate
	f.EndDate = q.EndDate

	if q.HostID != "" {
		id, err := uuid.Parse(q.HostID)
		if err != nil {
			return f, fmt.Errorf("host id: %w", apperrors.ErrInvalidInput)
		}
		f.HostID = &id
	}
	if q.EventTypeID != 0 {
		id := q.EventTypeID
		f.EventTypeID = &id
	}
	if q.GenreID != 0 {
		id := q.GenreID
		f.GenreID = &id
	}
	if q.Status != "" {
		status, err := ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}
	return f, nil
}
