package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a domain event published to the message bus
type EventType string

const (
	EventTypeEventPlanned     EventType = "event.planned"
	EventTypeEventArchived    EventType = "event.archived"
	EventTypeEventDeleted     EventType = "event.deleted"
	EventTypeTicketsPurchased EventType = "tickets.purchased"
)

// DomainEvent is the envelope of every published message
type DomainEvent struct {
	ID          uuid.UUID              `json:"id"`
	Type        EventType              `json:"type"`
	AggregateID uuid.UUID              `json:"aggregate_id"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// NewDomainEvent creates an event for aggregateID with a fresh id
func NewDomainEvent(eventType EventType, aggregateID uuid.UUID, payload map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}
}

// ToJSON serializes the event
func (e *DomainEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey keeps all events of one aggregate on one partition
func (e *DomainEvent) GetPartitionKey() string {
	return e.AggregateID.String()
}
