package events

import (
	"context"
	"errors"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Favourites are owned by the clients module; event deletion clears them.
const favouritesTable = "client_favourite_events"

type Repository interface {
	// Transaction runs fn inside one database transaction
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*Event, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Event, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Event, error)
	List(ctx context.Context, filter EventFilter, page pagination.Params) ([]Event, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetEventTypes(ctx context.Context) ([]EventType, error)
	EventTypeExists(ctx context.Context, id uint) (bool, error)
	GetGenres(ctx context.Context, eventTypeID uint) ([]Genre, error)
	GenreExists(ctx context.Context, id uint) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(event).Error; err != nil {
		return err
	}
	if event.Details != nil {
		event.Details.EventID = event.ID
		return db.Create(event.Details).Error
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrEntityNotFound
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Preload("Host").First(&event, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (r *repository) GetWithDetails(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("Host").
		Preload("Details").
		Preload("Genre.EventType").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Preload("Host").First(&event, "idempotency_key = ?", key).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, filter EventFilter, page pagination.Params) ([]Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&Event{})

	if filter.CityName != nil {
		query = query.Joins("JOIN locations ON locations.host_id = events.host_id").
			Where("locations.city_name = ?", *filter.CityName)
	}
	if filter.StartDate != nil {
		query = query.Where("events.start_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("events.start_date::date <= ?::date", *filter.EndDate)
	}
	if filter.HostID != nil {
		query = query.Where("events.host_id = ?", *filter.HostID)
	}
	if filter.EventTypeID != nil {
		query = query.Joins("JOIN genres ON genres.id = events.genre_id").
			Where("genres.event_type_id = ?", *filter.EventTypeID)
	}
	if filter.GenreID != nil {
		query = query.Where("events.genre_id = ?", *filter.GenreID)
	}
	if filter.Status != nil {
		query = query.Where("events.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	err := query.
		Preload("Host").
		Order("events.start_date ASC, events.id ASC").
		Scopes(pagination.Scope(page)).
		Find(&events).Error
	return events, total, err
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the event with its favourites, tickets, ticket types and
// details. It must run inside a transaction.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if err := db.Exec("DELETE FROM "+favouritesTable+" WHERE event_id = ?", id).Error; err != nil {
		return err
	}
	typeIDs := db.Table("ticket_types").Select("id").Where("event_id = ?", id)
	if err := db.Exec("DELETE FROM tickets WHERE ticket_type_id IN (?)", typeIDs).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM ticket_types WHERE event_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&EventDetails{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrEntityNotFound
	}
	return nil
}

func (r *repository) GetEventTypes(ctx context.Context) ([]EventType, error) {
	var types []EventType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

func (r *repository) EventTypeExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&EventType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetGenres(ctx context.Context, eventTypeID uint) ([]Genre, error) {
	var genres []Genre
	err := r.db.WithContext(ctx).
		Where("event_type_id = ?", eventTypeID).
		Order("id ASC").
		Find(&genres).Error
	return genres, err
}

func (r *repository) GenreExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Genre{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
