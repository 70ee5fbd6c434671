package database

import (
	"gorm.io/gorm"
)

// constraints gorm tags cannot express
var constraints = []string{
	// One ticket per seat of a ticket type; general admission rows have no position
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_position
		ON tickets (ticket_type_id, row_num, seat_num)
		WHERE row_num IS NOT NULL`,

	// Replayed planning requests resolve to the event created first
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_events_idempotency_key
		ON events (idempotency_key)
		WHERE idempotency_key IS NOT NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_clients_email_lower
		ON clients (LOWER(email))`,

	`CREATE INDEX IF NOT EXISTS idx_tickets_client_id_sold
		ON tickets (client_id)
		WHERE status = 'SOLD'`,
}

// MigrateConstraints adds the indexes that guard ticket sales and registration
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
