package tickets

import (
	"context"
	"errors"
	"fmt"

	"festivaltickets/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const createBatchSize = 500

type Repository interface {
	// WithTx returns a repository bound to an open transaction
	WithTx(tx *gorm.DB) Repository

	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Ticket, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]Ticket, error)
	GetIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	GetTicketTypesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)
	GetTicketsWithPrice(ctx context.Context, ids []uuid.UUID) ([]TicketWithPrice, error)

	CreateForEvent(ctx context.Context, eventID uuid.UUID, types []TicketType, tickets []Ticket) error
	Purchase(ctx context.Context, ids []uuid.UUID, clientID uuid.UUID) error
	SetStatus(ctx context.Context, ids []uuid.UUID, status Status, clientID *uuid.UUID) (int64, error)
	ArchiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Preload("TicketType").First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntityNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Preload("TicketType").
		Where("id IN ?", ids).
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) eventTickets(ctx context.Context, eventID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Ticket{}).
		Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Where("ticket_types.event_id = ?", eventID)
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.eventTickets(ctx, eventID).
		Preload("TicketType").
		Order("tickets.row_num ASC NULLS LAST, tickets.seat_num ASC NULLS LAST, tickets.id ASC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) GetIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.eventTickets(ctx, eventID).Pluck("tickets.id", &ids).Error
	return ids, err
}

func (r *repository) GetTicketTypesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	var types []TicketType
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("price DESC, name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) GetTicketsWithPrice(ctx context.Context, ids []uuid.UUID) ([]TicketWithPrice, error) {
	var result []TicketWithPrice
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("tickets.id, tickets.row_num, tickets.seat_num, ticket_types.name AS ticket_type_name, ticket_types.price, ticket_types.event_id").
		Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Where("tickets.id IN ?", ids).
		Order("tickets.row_num ASC NULLS LAST, tickets.seat_num ASC NULLS LAST").
		Scan(&result).Error
	return result, err
}

// CreateForEvent writes the ticket types and tickets of an event. The event
// row is locked first so that concurrent calls for one event serialize; if
// the event already owns ticket types nothing is written.
func (r *repository) CreateForEvent(ctx context.Context, eventID uuid.UUID, types []TicketType, tickets []Ticket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT 1 FROM events WHERE id = ? FOR UPDATE", eventID).Error; err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}

		var existing int64
		if err := tx.Model(&TicketType{}).Where("event_id = ?", eventID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count ticket types: %w", err)
		}
		if existing > 0 {
			return apperrors.ErrTicketsAlreadyExist
		}

		if err := tx.Omit(clause.Associations).Create(&types).Error; err != nil {
			return fmt.Errorf("failed to create ticket types: %w", err)
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&tickets, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create tickets: %w", err)
		}
		return nil
	})
}

// Purchase marks all ids SOLD for clientID, or none of them if any is no
// longer AVAILABLE.
func (r *repository) Purchase(ctx context.Context, ids []uuid.UUID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Ticket{}).
			Where("id IN ? AND status = ?", ids, StatusAvailable).
			Updates(map[string]interface{}{
				"status":    StatusSold,
				"client_id": clientID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return apperrors.ErrTicketNotAvailable
		}
		return nil
	})
}

func (r *repository) SetStatus(ctx context.Context, ids []uuid.UUID, status Status, clientID *uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":    status,
			"client_id": clientID,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ArchiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("ticket_type_id IN (?)", r.db.Model(&TicketType{}).Select("id").Where("event_id = ?", eventID)).
		Update("status", StatusOutOfDate)
	return res.RowsAffected, res.Error
}
