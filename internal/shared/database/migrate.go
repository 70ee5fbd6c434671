package database

import (
	"festivaltickets/internal/clients"
	"festivaltickets/internal/events"
	"festivaltickets/internal/hosts"
	"festivaltickets/internal/tickets"

	"gorm.io/gorm"
)

// Migrate creates the schema. Referenced tables come first.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&hosts.HostType{},
		&hosts.Host{},
		&hosts.Location{},
		&hosts.HallDetail{},
		&events.EventType{},
		&events.Genre{},
		&events.Event{},
		&events.EventDetails{},
		&tickets.TicketType{},
		&tickets.Ticket{},
		&clients.Client{},
	)
}
