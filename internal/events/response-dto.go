package events

import (
	"time"

	"github.com/google/uuid"
)

type EventResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	HostName  string    `json:"host_name"`
	Status    Status    `json:"status"`
}

type EventWithDetailsResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	HostID      uuid.UUID `json:"host_id"`
	HostName    string    `json:"host_name"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	GenreID     uint      `json:"genre_id"`
	GenreName   string    `json:"genre_name,omitempty"`
	EventType   string    `json:"event_type,omitempty"`
}

type EventTypeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type GenreResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PlannedEventResponse is returned from planning; Replayed marks an answer
// served from an earlier request with the same idempotency key.
type PlannedEventResponse struct {
	EventResponse
	TicketsCreated int  `json:"tickets_created"`
	Replayed       bool `json:"replayed"`
}

func toEventResponse(e Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Title:     e.Title,
		StartDate: e.StartDate,
		HostName:  e.HostName(),
		Status:    e.Status,
	}
}

func toEventWithDetailsResponse(e Event) EventWithDetailsResponse {
	resp := EventWithDetailsResponse{
		ID:        e.ID,
		Title:     e.Title,
		StartDate: e.StartDate,
		HostID:    e.HostID,
		HostName:  e.HostName(),
		Status:    e.Status,
		GenreID:   e.GenreID,
	}
	if e.Details != nil {
		resp.Description = e.Details.Description
		resp.Duration = e.Details.Duration
	}
	if e.Genre != nil {
		resp.GenreName = e.Genre.Name
		if e.Genre.EventType != nil {
			resp.EventType = e.Genre.EventType.Name
		}
	}
	return resp
}
