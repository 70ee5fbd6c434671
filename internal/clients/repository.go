package clients

import (
	"context"
	"errors"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const favouritesTable = "client_favourite_events"

// Repository interface for client operations
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	GetIDBySubject(ctx context.Context, subject string) (uuid.UUID, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	SubjectExists(ctx context.Context, subject string) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// Favourites
	EventExists(ctx context.Context, eventID uuid.UUID) (bool, error)
	IsFavourite(ctx context.Context, clientID, eventID uuid.UUID) (bool, error)
	AddFavourite(ctx context.Context, clientID, eventID uuid.UUID) error
	RemoveFavourite(ctx context.Context, clientID, eventID uuid.UUID) error
	GetFavourites(ctx context.Context, clientID uuid.UUID, page pagination.Params) ([]FavouriteEvent, int64, error)

	GetPurchasedTickets(ctx context.Context, clientID uuid.UUID, page pagination.Params) ([]PurchasedTicket, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new client repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, client *Client) error {
	return r.db.WithContext(ctx).Omit("FavouriteEvents").Create(client).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	var client Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Client, error) {
	var client Client
	if err := r.db.WithContext(ctx).First(&client, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *repository) GetIDBySubject(ctx context.Context, subject string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Client{}).
		Select("id").
		Where("subject = ?", subject).
		Take(&id).Error
	if err != nil {
		return uuid.Nil, notFound(err)
	}
	return id, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&Client{}).Where("LOWER(email) = LOWER(?)", email))
}

func (r *repository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&Client{}).Where("phone = ?", phone))
}

func (r *repository) SubjectExists(ctx context.Context, subject string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&Client{}).Where("subject = ?", subject))
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&Client{}).Where("id = ?", id))
}

func (r *repository) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Table("events").Where("id = ?", eventID))
}

func (r *repository) IsFavourite(ctx context.Context, clientID, eventID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Table(favouritesTable).Where("client_id = ? AND event_id = ?", clientID, eventID))
}

func exists(query *gorm.DB) (bool, error) {
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// Delete removes the client with its favourites. Sold tickets stay sold
// but lose their owner. Returns the number of deleted clients.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+favouritesTable+" WHERE client_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE tickets SET client_id = NULL WHERE client_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Client{}, "id = ?", id)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

func (r *repository) AddFavourite(ctx context.Context, clientID, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO "+favouritesTable+" (client_id, event_id) VALUES (?, ?) ON CONFLICT DO NOTHING", clientID, eventID).
		Error
}

func (r *repository) RemoveFavourite(ctx context.Context, clientID, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+favouritesTable+" WHERE client_id = ? AND event_id = ?", clientID, eventID).
		Error
}

func (r *repository) GetFavourites(ctx context.Context, clientID uuid.UUID, page pagination.Params) ([]FavouriteEvent, int64, error) {
	query := r.db.WithContext(ctx).
		Table("events").
		Joins("JOIN "+favouritesTable+" fav ON fav.event_id = events.id").
		Where("fav.client_id = ?", clientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favourites []FavouriteEvent
	err := query.
		Select("events.id, events.title, events.start_date, COALESCE(hosts.name, '') AS host_name, events.status").
		Joins("LEFT JOIN hosts ON hosts.id = events.host_id").
		Order("events.start_date ASC, events.id ASC").
		Scopes(pagination.Scope(page)).
		Scan(&favourites).Error
	return favourites, total, err
}

func (r *repository) GetPurchasedTickets(ctx context.Context, clientID uuid.UUID, page pagination.Params) ([]PurchasedTicket, int64, error) {
	query := r.db.WithContext(ctx).
		Table("tickets").
		Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Joins("JOIN events ON events.id = ticket_types.event_id").
		Where("tickets.client_id = ?", clientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchased []PurchasedTicket
	err := query.
		Select(`tickets.id, tickets.row_num, tickets.seat_num,
			ticket_types.name AS ticket_type_name, ticket_types.price,
			events.id AS event_id, events.title AS event_title, events.start_date AS event_start_date`).
		Order("tickets.id ASC").
		Scopes(pagination.Scope(page)).
		Scan(&purchased).Error
	return purchased, total, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrEntityNotFound
	}
	return err
}
